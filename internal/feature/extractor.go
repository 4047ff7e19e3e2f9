// Package feature converts sensor samples into the normalized feature vector
// consumed by the inference engine.
package feature

import (
	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/sensor"
)

// Size is the number of feature channels, one per sensor channel.
const Size = 4

// Vector is a normalized feature vector. Every value is in [0, 1].
type Vector [Size]float64

// Extractor maps samples into the unit hypercube with fixed affine maps.
// It is pure and deterministic: same sample and window, same vector.
type Extractor struct {
	tempLow  float64
	tempHigh float64
}

// NewExtractor creates an Extractor with the configured temperature window.
// The window must satisfy low < high, enforced by conf.ValidateSettings.
func NewExtractor(settings *conf.SensorSettings) *Extractor {
	return &Extractor{
		tempLow:  settings.TempNormLow,
		tempHigh: settings.TempNormHigh,
	}
}

// Extract normalizes a sample into [0,1]^4. Out-of-window inputs are
// clamped, never rejected.
func (e *Extractor) Extract(s *sensor.Sample) Vector {
	return Vector{
		clamp01(s.Moisture / 100.0),
		clamp01((s.Temperature - e.tempLow) / (e.tempHigh - e.tempLow)),
		clamp01(s.Humidity / 100.0),
		clamp01(s.AudioEnergy),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
