// Package sensor provides the sensor port abstraction and the acquisition
// layer that turns raw channel readings into validated samples.
package sensor

import (
	"context"
	"fmt"
)

// Channel identifies one physical sensor channel.
type Channel int

const (
	Moisture Channel = iota
	Temperature
	Humidity
	AudioEnergy
)

// Channels lists all channels in acquisition order.
var Channels = []Channel{Moisture, Temperature, Humidity, AudioEnergy}

// String returns the channel name used in logs and error context.
func (c Channel) String() string {
	switch c {
	case Moisture:
		return "moisture"
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	case AudioEnergy:
		return "audio_energy"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Port is the narrow interface to the sensor hardware. Implementations
// delegate to the actual drivers; the pipeline never touches hardware
// directly so it stays testable with fakes.
type Port interface {
	// ReadChannel reads the current value of one channel in its physical
	// unit. A driver failure returns an error, never a bogus value.
	ReadChannel(ctx context.Context, c Channel) (float64, error)

	// BatteryVoltage reads the supply voltage in volts.
	BatteryVoltage(ctx context.Context) (float64, error)

	// Sleep puts the sensors into low-power mode between cycles.
	Sleep()

	// Wake brings the sensors back from low-power mode.
	Wake()
}

// Sample is one validated reading of all channels. Created fresh each cycle
// and discarded after use.
type Sample struct {
	Moisture    float64 // soil moisture, 0-100 %
	Temperature float64 // air temperature, celsius
	Humidity    float64 // relative humidity, 0-100 %
	AudioEnergy float64 // normalized acoustic energy, 0-1
	Timestamp   int64   // monotonic milliseconds since node start

	// Degraded is set when any channel was substituted with a last
	// known-good value or a sentinel.
	Degraded bool

	// Valid records per channel whether the reading came from the driver
	// this cycle. A channel that has never produced a good reading stays
	// invalid even after sentinel substitution.
	Valid [4]bool
}

// Value returns the sample's reading for the given channel.
func (s *Sample) Value(c Channel) float64 {
	switch c {
	case Moisture:
		return s.Moisture
	case Temperature:
		return s.Temperature
	case Humidity:
		return s.Humidity
	case AudioEnergy:
		return s.AudioEnergy
	default:
		return 0
	}
}

func (s *Sample) setValue(c Channel, v float64) {
	switch c {
	case Moisture:
		s.Moisture = v
	case Temperature:
		s.Temperature = v
	case Humidity:
		s.Humidity = v
	case AudioEnergy:
		s.AudioEnergy = v
	}
}
