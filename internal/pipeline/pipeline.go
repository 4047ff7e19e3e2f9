// Package pipeline assembles the sensor-to-alert components from settings
// and runs them, either continuously (realtime mode) or for a single cycle.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrisense/cropsentry-go/internal/alert"
	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/datastore"
	"github.com/agrisense/cropsentry-go/internal/errors"
	"github.com/agrisense/cropsentry-go/internal/inference"
	"github.com/agrisense/cropsentry-go/internal/logging"
	"github.com/agrisense/cropsentry-go/internal/observability"
	"github.com/agrisense/cropsentry-go/internal/scheduler"
	"github.com/agrisense/cropsentry-go/internal/sensor"
	"github.com/agrisense/cropsentry-go/internal/transport"
)

// components holds everything a run needs plus the teardown order.
type components struct {
	scheduler *scheduler.Scheduler
	metrics   *observability.Metrics
	transport transport.Transport
	store     *datastore.Store
}

func (c *components) close() {
	if c.transport != nil {
		c.transport.Disconnect()
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			logging.Warn("failed to close datastore", "error", err)
		}
	}
}

// build assembles the pipeline from settings. The caller owns teardown via
// components.close.
func build(settings *conf.Settings) (*components, error) {
	port, err := NewPort(settings)
	if err != nil {
		return nil, err
	}

	model, err := inference.LoadModel(settings.Model.Path)
	if err != nil {
		return nil, err
	}
	engine := inference.NewEngine(model)

	tr, err := transport.New(settings.Node.DeviceID, &settings.Alerts)
	if err != nil {
		return nil, err
	}

	var metrics *observability.Metrics
	if settings.Metrics.Enabled {
		metrics, err = observability.NewMetrics()
		if err != nil {
			return nil, err
		}
	}

	var store *datastore.Store
	if settings.Datastore.Enabled {
		store, err = datastore.Open(settings.Datastore.Path)
		if err != nil {
			return nil, err
		}
	}

	dispatcher := alert.NewDispatcher(settings.Node.DeviceID, &settings.Alerts, tr, metrics)

	return &components{
		scheduler: scheduler.New(settings, port, engine, dispatcher, store, metrics),
		metrics:   metrics,
		transport: tr,
		store:     store,
	}, nil
}

// NewPort returns the sensor driver selected by settings. Hardware drivers
// live in platform-specific builds; this module ships the simulated driver.
func NewPort(settings *conf.Settings) (sensor.Port, error) {
	if settings.Sensors.Simulated {
		return sensor.NewSimulated(sensor.ScenarioMixed, uint64(time.Now().UnixNano())), nil
	}
	return nil, errors.Newf("hardware sensor drivers are not part of this build, set sensors.simulated").
		Component("pipeline").
		Category(errors.CategoryConfiguration).
		Build()
}

// Realtime runs the duty-cycled pipeline until SIGINT or SIGTERM.
func Realtime(settings *conf.Settings) error {
	c, err := build(settings)
	if err != nil {
		return err
	}
	defer c.close()

	fmt.Printf("Starting %s in realtime mode. Interval: %v, threshold: %v, transport: %s\n",
		settings.Node.Name,
		settings.Sensors.ReadInterval,
		settings.Model.ConfidenceThreshold,
		settings.Alerts.Transport)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.metrics != nil && settings.Metrics.Listen != "" {
		observability.NewEndpoint(settings.Metrics.Listen, c.metrics).Start(ctx)
	}

	err = c.scheduler.Run(ctx)
	fmt.Fprintf(os.Stderr, "shutting down after %d cycles\n", c.scheduler.CycleCount())
	return err
}

// Once runs a single duty cycle and prints its outcome to stdout. Used for
// field commissioning checks.
func Once(ctx context.Context, settings *conf.Settings) error {
	c, err := build(settings)
	if err != nil {
		return err
	}
	defer c.close()

	report := c.scheduler.RunCycle(ctx)

	s := report.Sample
	fmt.Printf("moisture: %.1f%%  temperature: %.1fC  humidity: %.1f%%  audio: %.3f  degraded: %v\n",
		s.Moisture, s.Temperature, s.Humidity, s.AudioEnergy, s.Degraded)

	if report.Skipped {
		fmt.Println("inference failed, cycle skipped")
		return nil
	}

	r := report.Result
	fmt.Printf("class: %s  confidence: %.2f  latency: %dus\n",
		r.PredictedClass, r.Confidence, r.Latency.Microseconds())
	fmt.Printf("scores: normal=%.3f water_stress=%.3f pest_risk=%.3f\n",
		r.RawScores[0], r.RawScores[1], r.RawScores[2])

	if report.Sent {
		fmt.Printf("alert: %s (%s)\n", report.Decision.Type, report.Outcome)
	} else {
		fmt.Printf("no alert: %s\n", report.Decision.Reason)
	}
	return nil
}
