// Package transport abstracts the wireless link used to deliver alert
// payloads. The dispatcher owns retry policy; a transport performs a single
// connect or send attempt bounded by its context.
package transport

import (
	"context"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/errors"
)

// Transport is the narrow interface to the wireless collaborator.
type Transport interface {
	// Connect establishes the link. It returns an error on failure or
	// when ctx expires; it never retries internally.
	Connect(ctx context.Context) error

	// Send transmits one payload. The attempt is bounded by ctx.
	Send(ctx context.Context, payload []byte) error

	// IsConnected reports whether the link is currently up.
	IsConnected() bool

	// Disconnect tears the link down. Safe to call when not connected.
	Disconnect()
}

// New creates the transport selected by the alert settings.
func New(deviceID string, settings *conf.AlertSettings) (Transport, error) {
	switch settings.Transport {
	case "http":
		return NewHTTP(&settings.HTTP), nil
	case "mqtt":
		return NewMQTT(deviceID, &settings.MQTT), nil
	default:
		return nil, errors.Newf("unsupported alert transport: %s", settings.Transport).
			Component("transport").
			Category(errors.CategoryConfiguration).
			Context("transport", settings.Transport).
			Build()
	}
}
