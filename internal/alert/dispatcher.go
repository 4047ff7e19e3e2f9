package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/errors"
	"github.com/agrisense/cropsentry-go/internal/logging"
	"github.com/agrisense/cropsentry-go/internal/observability"
	"github.com/agrisense/cropsentry-go/internal/sensor"
	"github.com/agrisense/cropsentry-go/internal/transport"
)

// Request carries an approved alert decision into the dispatcher.
type Request struct {
	Type       Type
	Confidence float64        // 0-1
	Sample     *sensor.Sample // nil for battery and system alerts
	Timestamp  int64          // monotonic ms, used when Sample is nil
}

// Dispatcher owns the alert history and transmits approved alerts with rate
// limiting and bounded retry. It is the only component that mutates History.
type Dispatcher struct {
	settings  *conf.AlertSettings
	deviceID  string
	transport transport.Transport
	history   *History
	metrics   *observability.Metrics
	log       *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewDispatcher creates a dispatcher using the given transport. History is
// owned by the dispatcher; callers needing the read-only rate-limit view use
// History().
func NewDispatcher(deviceID string, settings *conf.AlertSettings, tr transport.Transport, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		settings:  settings,
		deviceID:  deviceID,
		transport: tr,
		history:   NewHistory(settings.MinInterval),
		metrics:   metrics,
		log:       logging.ForService("alert"),
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// History returns the dispatcher's alert history for read-only checks.
func (d *Dispatcher) History() *History {
	return d.history
}

// Dispatch rate-limits, builds and transmits one alert. The outcome is a
// value; a rate-limited alert is a normal suppressed result, and a failed
// alert is dropped after the retry budget with history unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Outcome, error) {
	if !d.history.Allow(req.Type) {
		d.metrics.IncAlertRateLimited(string(req.Type))
		d.log.Info("alert rate limited",
			"type", string(req.Type),
			"window", d.history.Window().String())
		return OutcomeRateLimited, nil
	}

	record := NewRecord(d.deviceID, req.Type, req.Confidence, req.Sample)
	if req.Sample == nil {
		record.Timestamp = uint32(req.Timestamp)
	}

	payload, err := record.Marshal()
	if err != nil {
		return OutcomeFailed, errors.New(err).
			Component("alert").
			Category(errors.CategoryValidation).
			Context("type", string(req.Type)).
			Build()
	}

	var lastErr error
	for attempt := 1; attempt <= d.settings.MaxRetries; attempt++ {
		d.metrics.IncAlertAttempt()

		if err := d.attempt(ctx, payload); err != nil {
			lastErr = err
			d.log.Warn("alert transmission attempt failed",
				"type", string(req.Type),
				"attempt", attempt,
				"max_retries", d.settings.MaxRetries,
				"error", err)

			if attempt < d.settings.MaxRetries {
				if !d.sleep(ctx, d.settings.RetryInterval) {
					break // caller abandoned the retry loop
				}
			}
			continue
		}

		d.history.MarkSent(req.Type, d.now())
		d.metrics.IncAlertSent(string(req.Type))
		d.log.Info("alert sent",
			"type", string(req.Type),
			"confidence", record.Confidence,
			"attempt", attempt)
		return OutcomeSent, nil
	}

	d.metrics.IncAlertFailure()
	d.log.Error("alert dropped after exhausting retries",
		"type", string(req.Type),
		"attempts", d.settings.MaxRetries,
		"error", lastErr)

	return OutcomeFailed, errors.New(lastErr).
		Component("alert").
		Category(errors.CategoryTransmission).
		Context("type", string(req.Type)).
		Context("attempts", d.settings.MaxRetries).
		Build()
}

// attempt performs one connect-and-send, bounded by the configured timeouts.
func (d *Dispatcher) attempt(ctx context.Context, payload []byte) error {
	if !d.transport.IsConnected() {
		connectCtx, cancel := context.WithTimeout(ctx, d.settings.ConnectTimeout)
		err := d.transport.Connect(connectCtx)
		cancel()
		if err != nil {
			return err
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.settings.SendTimeout)
	defer cancel()
	return d.transport.Send(sendCtx, payload)
}

// sleepCtx waits for d or until ctx is cancelled. It reports whether the
// full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
