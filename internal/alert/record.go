package alert

import (
	"encoding/json"

	"github.com/agrisense/cropsentry-go/internal/sensor"
)

// SensorData is the sensor snapshot carried in the alert payload.
type SensorData struct {
	Moisture    float64 `json:"moisture"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Audio       float64 `json:"audio"`
}

// Record is the alert wire format. Field order is not significant.
type Record struct {
	DeviceID       string     `json:"device_id"`
	Timestamp      uint32     `json:"timestamp"` // monotonic milliseconds
	AlertType      Type       `json:"alert_type"`
	Confidence     uint8      `json:"confidence"` // 0-100
	SensorData     SensorData `json:"sensor_data"`
	Recommendation string     `json:"recommendation"`
}

// NewRecord builds an alert record from a decision. Confidence is converted
// from [0,1] to an integer percentage. A nil sample yields a zero snapshot,
// matching battery alerts that carry no classification context.
func NewRecord(deviceID string, t Type, confidence float64, sample *sensor.Sample) *Record {
	r := &Record{
		DeviceID:       deviceID,
		AlertType:      t,
		Confidence:     confidencePercent(confidence),
		Recommendation: t.Recommendation(),
	}
	if sample != nil {
		r.Timestamp = uint32(sample.Timestamp)
		r.SensorData = SensorData{
			Moisture:    sample.Moisture,
			Temperature: sample.Temperature,
			Humidity:    sample.Humidity,
			Audio:       sample.AudioEnergy,
		}
	}
	return r
}

// Marshal serializes the record to its JSON wire format.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func confidencePercent(c float64) uint8 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 100
	}
	return uint8(c * 100)
}
