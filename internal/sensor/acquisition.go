package sensor

import (
	"context"
	"log/slog"
	"time"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/errors"
	"github.com/agrisense/cropsentry-go/internal/logging"
)

// sentinel returns the substitute value used for a channel that has never
// produced a good reading: the midpoint of its plausible range.
func sentinel(b conf.SensorBounds) float64 {
	return (b.Min + b.Max) / 2
}

// Acquirer reads all channels through a Port and applies plausibility
// checks. It holds the last known-good value per channel so a flaky channel
// degrades the sample instead of aborting the cycle.
type Acquirer struct {
	port     Port
	settings *conf.SensorSettings
	start    time.Time
	log      *slog.Logger

	lastGood [4]float64
	haveGood [4]bool
}

// NewAcquirer creates an Acquirer reading from port with the given settings.
func NewAcquirer(port Port, settings *conf.SensorSettings) *Acquirer {
	return &Acquirer{
		port:     port,
		settings: settings,
		start:    time.Now(),
		log:      logging.ForService("sensor"),
	}
}

// bounds returns the plausibility bounds for a channel.
func (a *Acquirer) bounds(c Channel) conf.SensorBounds {
	switch c {
	case Moisture:
		return a.settings.Bounds.Moisture
	case Temperature:
		return a.settings.Bounds.Temperature
	case Humidity:
		return a.settings.Bounds.Humidity
	case AudioEnergy:
		return a.settings.Bounds.AudioEnergy
	default:
		return conf.SensorBounds{Min: 0, Max: 1}
	}
}

// Acquire produces one Sample by reading every channel. Out-of-range values
// and driver errors are replaced with the last known-good value (or the
// channel sentinel before any good reading) and the sample is tagged
// degraded. Acquire never fails the cycle.
func (a *Acquirer) Acquire(ctx context.Context) *Sample {
	sample := &Sample{
		Timestamp: time.Since(a.start).Milliseconds(),
	}

	for _, c := range Channels {
		value, err := a.port.ReadChannel(ctx, c)
		b := a.bounds(c)

		switch {
		case err != nil:
			ee := errors.New(err).
				Component("sensor").
				Category(errors.CategorySensorRead).
				Context("channel", c.String()).
				Build()
			a.log.Warn("channel read failed, substituting", append([]any{"error", ee}, ee.LogArgs()...)...)
			a.substitute(sample, c, b)

		case value < b.Min || value > b.Max:
			a.log.Warn("implausible reading, substituting",
				"channel", c.String(), "value", value, "min", b.Min, "max", b.Max)
			a.substitute(sample, c, b)

		default:
			sample.setValue(c, value)
			sample.Valid[c] = true
			a.lastGood[c] = value
			a.haveGood[c] = true
		}
	}

	return sample
}

// substitute fills in the last known-good value, or the sentinel when the
// channel has never read successfully, and marks the sample degraded.
func (a *Acquirer) substitute(sample *Sample, c Channel, b conf.SensorBounds) {
	if a.haveGood[c] {
		sample.setValue(c, a.lastGood[c])
	} else {
		sample.setValue(c, sentinel(b))
	}
	sample.Degraded = true
}
