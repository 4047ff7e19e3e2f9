package transport

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/errors"
	"github.com/agrisense/cropsentry-go/internal/logging"
)

// HTTP posts alert payloads as JSON to a cloud ingestion endpoint.
type HTTP struct {
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

// NewHTTP creates an HTTP transport for the configured endpoint. Per-attempt
// timeouts come from the caller's context, so the client itself has none.
func NewHTTP(settings *conf.HTTPSettings) *HTTP {
	return &HTTP{
		endpoint: settings.Endpoint,
		client:   &http.Client{},
		log:      logging.ForService("transport"),
	}
}

// Connect is a no-op for HTTP: connections are established per request.
func (h *HTTP) Connect(ctx context.Context) error {
	return ctx.Err()
}

// IsConnected always reports true; HTTP has no persistent link state.
func (h *HTTP) IsConnected() bool {
	return true
}

// Send posts the payload. Any non-2xx status is a transmission error.
func (h *HTTP) Send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.New(fmt.Errorf("failed to build alert request: %w", err)).
			Component("transport").
			Category(errors.CategoryTransmission).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return errors.New(fmt.Errorf("alert POST failed: %w", err)).
			Component("transport").
			Category(errors.CategoryTransmission).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Newf("alert POST returned status %d", resp.StatusCode).
			Component("transport").
			Category(errors.CategoryTransmission).
			Context("status_code", resp.StatusCode).
			Build()
	}

	h.log.Debug("alert delivered", "endpoint", h.endpoint, "status", resp.StatusCode)
	return nil
}

// Disconnect closes idle connections.
func (h *HTTP) Disconnect() {
	h.client.CloseIdleConnections()
}
