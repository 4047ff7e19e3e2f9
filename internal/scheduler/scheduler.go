// Package scheduler drives the duty cycle: an active phase running the
// sensor-to-alert pipeline, a cooperative sleep phase, and a periodic
// battery check sub-step.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrisense/cropsentry-go/internal/alert"
	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/datastore"
	"github.com/agrisense/cropsentry-go/internal/feature"
	"github.com/agrisense/cropsentry-go/internal/inference"
	"github.com/agrisense/cropsentry-go/internal/logging"
	"github.com/agrisense/cropsentry-go/internal/observability"
	"github.com/agrisense/cropsentry-go/internal/policy"
	"github.com/agrisense/cropsentry-go/internal/sensor"
)

// CycleReport summarizes one active phase for callers and diagnostics.
type CycleReport struct {
	Sample   *sensor.Sample
	Features feature.Vector
	Result   *inference.Result // nil when inference failed
	Decision policy.Decision
	Outcome  alert.Outcome
	Sent     bool // true when the decision led to a dispatch attempt
	Skipped  bool // true when the cycle was skipped on inference error
}

// Scheduler owns the cycle counter and wires the pipeline components
// together. All process-wide mutable state lives here, not in globals, so
// tests construct independent schedulers.
type Scheduler struct {
	settings   *conf.Settings
	port       sensor.Port
	acquirer   *sensor.Acquirer
	extractor  *feature.Extractor
	engine     *inference.Engine
	policy     *policy.Policy
	dispatcher *alert.Dispatcher
	store      *datastore.Store // nil disables persistence
	metrics    *observability.Metrics
	log        *slog.Logger

	cycleCount   uint64
	batteryEvery uint64
	start        time.Time
	sleep        func(ctx context.Context, d time.Duration) bool
}

// New creates a scheduler over the given components. store and metrics may
// be nil.
func New(settings *conf.Settings, port sensor.Port, engine *inference.Engine,
	dispatcher *alert.Dispatcher, store *datastore.Store, metrics *observability.Metrics) *Scheduler {

	batteryEvery := uint64(settings.Power.BatteryCheckInterval / settings.Sensors.ReadInterval)
	if batteryEvery == 0 {
		batteryEvery = 1
	}

	return &Scheduler{
		settings:     settings,
		port:         port,
		acquirer:     sensor.NewAcquirer(port, &settings.Sensors),
		extractor:    feature.NewExtractor(&settings.Sensors),
		engine:       engine,
		policy:       policy.New(&settings.Model, dispatcher.History()),
		dispatcher:   dispatcher,
		store:        store,
		metrics:      metrics,
		log:          logging.ForService("scheduler"),
		batteryEvery: batteryEvery,
		start:        time.Now(),
		sleep:        sleepCtx,
	}
}

// Run executes duty cycles until ctx is cancelled. Sleep is a timed
// suspension, never a busy wait; a missed wake deadline only delays the next
// cycle.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("pipeline started",
		"read_interval", s.settings.Sensors.ReadInterval.String(),
		"battery_check_cycles", s.batteryEvery,
		"model_version", s.engine.ModelVersion())

	for {
		if err := ctx.Err(); err != nil {
			s.log.Info("pipeline stopped", "cycles", s.cycleCount)
			return err
		}

		s.RunCycle(ctx)

		s.port.Sleep()
		if !s.sleep(ctx, s.settings.Sensors.ReadInterval) {
			s.port.Wake()
			s.log.Info("pipeline stopped", "cycles", s.cycleCount)
			return ctx.Err()
		}
		s.port.Wake()
	}
}

// RunCycle executes one active phase: acquire, extract, infer, decide and
// possibly dispatch, then the battery sub-step when due. Component failures
// degrade to "no alert this cycle" and never abort the process.
func (s *Scheduler) RunCycle(ctx context.Context) CycleReport {
	started := time.Now()
	s.cycleCount++

	report := CycleReport{}
	report.Sample = s.acquirer.Acquire(ctx)

	report.Features = s.extractor.Extract(report.Sample)

	result, err := s.engine.Infer(report.Features)
	if err != nil {
		s.metrics.IncInferenceError()
		s.log.Warn("inference failed, skipping cycle", "error", err, "cycle", s.cycleCount)
		report.Skipped = true
		s.finishCycle(started, &report)
		return report
	}
	report.Result = result
	s.metrics.ObserveInference(result.Latency)

	report.Decision = s.policy.Evaluate(result)
	if report.Decision.Alert {
		outcome, err := s.dispatcher.Dispatch(ctx, alert.Request{
			Type:       report.Decision.Type,
			Confidence: result.Confidence,
			Sample:     report.Sample,
		})
		report.Outcome = outcome
		report.Sent = true
		if err != nil {
			s.log.Warn("alert dispatch failed", "error", err, "type", string(report.Decision.Type))
		}
		s.logAlert(&report, outcome)
	}

	if s.cycleCount%s.batteryEvery == 0 {
		s.checkBattery(ctx)
	}

	s.finishCycle(started, &report)
	return report
}

// checkBattery reads the supply voltage and raises a low-battery alert when
// it drops below the critical threshold. The alert goes through the same
// dispatcher and is therefore subject to the same per-type rate limit.
func (s *Scheduler) checkBattery(ctx context.Context) {
	voltage, err := s.port.BatteryVoltage(ctx)
	if err != nil {
		s.log.Warn("battery voltage read failed", "error", err)
		return
	}
	s.metrics.SetBatteryVoltage(voltage)
	s.log.Debug("battery check", "voltage", voltage)

	if voltage >= s.settings.Power.BatteryCritical {
		return
	}

	s.log.Warn("battery below critical threshold",
		"voltage", voltage,
		"critical", s.settings.Power.BatteryCritical)

	outcome, err := s.dispatcher.Dispatch(ctx, alert.Request{
		Type:      alert.TypeLowBattery,
		Timestamp: time.Since(s.start).Milliseconds(),
	})
	if err != nil {
		s.log.Warn("low battery alert dispatch failed", "error", err)
	} else {
		s.log.Info("low battery alert", "outcome", outcome.String())
	}
}

// finishCycle updates metrics and persists the observation row.
func (s *Scheduler) finishCycle(started time.Time, report *CycleReport) {
	s.metrics.ObserveCycle(time.Since(started), report.Sample.Degraded)

	if s.store == nil || report.Result == nil {
		return
	}
	obs := &datastore.Observation{
		DeviceID:    s.settings.Node.DeviceID,
		Timestamp:   report.Sample.Timestamp,
		Moisture:    report.Sample.Moisture,
		Temperature: report.Sample.Temperature,
		Humidity:    report.Sample.Humidity,
		AudioEnergy: report.Sample.AudioEnergy,
		Degraded:    report.Sample.Degraded,
		Class:       report.Result.PredictedClass.String(),
		Confidence:  report.Result.Confidence,
		LatencyUS:   report.Result.Latency.Microseconds(),
	}
	if err := s.store.SaveObservation(obs); err != nil {
		s.log.Warn("failed to persist observation", "error", err)
	}
}

// logAlert persists the dispatch outcome for diagnostics.
func (s *Scheduler) logAlert(report *CycleReport, outcome alert.Outcome) {
	if s.store == nil {
		return
	}
	entry := &datastore.AlertLog{
		DeviceID:    s.settings.Node.DeviceID,
		Timestamp:   report.Sample.Timestamp,
		AlertType:   string(report.Decision.Type),
		Confidence:  uint8(report.Result.Confidence * 100),
		Outcome:     outcome.String(),
		MaxAttempts: s.settings.Alerts.MaxRetries,
	}
	if err := s.store.SaveAlertLog(entry); err != nil {
		s.log.Warn("failed to persist alert log", "error", err)
	}
}

// CycleCount reports the number of active phases run so far.
func (s *Scheduler) CycleCount() uint64 {
	return s.cycleCount
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
