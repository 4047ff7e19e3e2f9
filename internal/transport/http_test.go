package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/transport"
)

func TestHTTPSendPostsJSON(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	tr := transport.NewHTTP(&conf.HTTPSettings{Endpoint: server.URL})

	require.NoError(t, tr.Connect(context.Background()))
	assert.True(t, tr.IsConnected())

	payload := []byte(`{"device_id":"test-node","alert_type":"water_stress"}`)
	require.NoError(t, tr.Send(context.Background(), payload))

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, payload, gotBody)
}

func TestHTTPSendRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tr := transport.NewHTTP(&conf.HTTPSettings{Endpoint: server.URL})
	err := tr.Send(context.Background(), []byte(`{}`))
	assert.Error(t, err)
}

func TestHTTPSendHonorsContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	tr := transport.NewHTTP(&conf.HTTPSettings{Endpoint: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tr.Send(ctx, []byte(`{}`))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestHTTPSendUnreachableEndpoint(t *testing.T) {
	tr := transport.NewHTTP(&conf.HTTPSettings{Endpoint: "http://127.0.0.1:1/alerts"})
	assert.Error(t, tr.Send(context.Background(), []byte(`{}`)))
}

func TestNewSelectsTransport(t *testing.T) {
	settings := &conf.AlertSettings{Transport: "http"}
	settings.HTTP.Endpoint = "http://localhost:8080/api/alerts"

	tr, err := transport.New("test-node", settings)
	require.NoError(t, err)
	assert.IsType(t, &transport.HTTP{}, tr)

	settings.Transport = "mqtt"
	settings.MQTT.Broker = "tcp://localhost:1883"
	settings.MQTT.Topic = "cropsentry/alerts"
	tr, err = transport.New("test-node", settings)
	require.NoError(t, err)
	assert.IsType(t, &transport.MQTT{}, tr)

	settings.Transport = "lora"
	_, err = transport.New("test-node", settings)
	assert.Error(t, err)
}
