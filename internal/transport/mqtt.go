package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/errors"
	"github.com/agrisense/cropsentry-go/internal/logging"
)

// MQTT publishes alert payloads to a broker topic.
type MQTT struct {
	broker   string
	topic    string
	clientID string
	username string
	password string

	mu             sync.Mutex
	internalClient mqtt.Client
	log            *slog.Logger
}

// NewMQTT creates an MQTT transport for the configured broker and topic.
// The client ID is derived from the device ID with a random suffix, so a
// restarted node does not collide with its stale session.
func NewMQTT(deviceID string, settings *conf.MQTTSettings) *MQTT {
	return &MQTT{
		broker:   settings.Broker,
		topic:    settings.Topic,
		clientID: fmt.Sprintf("%s-%s", deviceID, uuid.NewString()[:8]),
		username: settings.Username,
		password: settings.Password,
		log:      logging.ForService("transport"),
	}
}

// Connect establishes the broker connection, bounded by ctx.
func (m *MQTT) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.internalClient != nil && m.internalClient.IsConnected() {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(m.broker)
	opts.SetClientID(m.clientID)
	opts.SetUsername(m.username)
	opts.SetPassword(m.password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false) // the dispatcher owns retry policy
	opts.SetConnectRetry(false)

	m.internalClient = mqtt.NewClient(opts)

	token := m.internalClient.Connect()
	if !token.WaitTimeout(timeoutFrom(ctx)) {
		return errors.Newf("mqtt connection timeout to %s", m.broker).
			Component("transport").
			Category(errors.CategoryTimeout).
			Context("broker", m.broker).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(fmt.Errorf("mqtt connection error: %w", err)).
			Component("transport").
			Category(errors.CategoryTransmission).
			Context("broker", m.broker).
			Build()
	}

	m.log.Debug("connected to mqtt broker", "broker", m.broker)
	return nil
}

// Send publishes the payload to the alert topic, bounded by ctx.
func (m *MQTT) Send(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.internalClient == nil || !m.internalClient.IsConnected() {
		return errors.Newf("not connected to mqtt broker").
			Component("transport").
			Category(errors.CategoryTransmission).
			Build()
	}

	token := m.internalClient.Publish(m.topic, 1, false, payload)
	if !token.WaitTimeout(timeoutFrom(ctx)) {
		return errors.Newf("publish timeout for topic %s", m.topic).
			Component("transport").
			Category(errors.CategoryTimeout).
			Context("topic", m.topic).
			Build()
	}
	if err := token.Error(); err != nil {
		return errors.New(fmt.Errorf("publish error: %w", err)).
			Component("transport").
			Category(errors.CategoryTransmission).
			Context("topic", m.topic).
			Build()
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (m *MQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.internalClient != nil && m.internalClient.IsConnected()
}

// Disconnect closes the broker connection.
func (m *MQTT) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.internalClient != nil && m.internalClient.IsConnected() {
		m.internalClient.Disconnect(250)
	}
}

// timeoutFrom converts a context deadline into the wait duration the paho
// token API expects. Without a deadline a conservative default applies.
func timeoutFrom(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return 30 * time.Second
}
