package conf_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/cropsentry-go/internal/conf"
)

func validSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Node.DeviceID = "cropsentry-001"
	s.Node.Name = "CropSentry Node"

	s.Sensors.ReadInterval = 30 * time.Second
	s.Sensors.Bounds.Moisture = conf.SensorBounds{Min: 0, Max: 100}
	s.Sensors.Bounds.Temperature = conf.SensorBounds{Min: -20, Max: 60}
	s.Sensors.Bounds.Humidity = conf.SensorBounds{Min: 0, Max: 100}
	s.Sensors.Bounds.AudioEnergy = conf.SensorBounds{Min: 0, Max: 1}
	s.Sensors.TempNormLow = 10
	s.Sensors.TempNormHigh = 50

	s.Model.ConfidenceThreshold = 0.70
	s.Model.DebounceCycles = 1

	s.Alerts.MinInterval = 5 * time.Minute
	s.Alerts.MaxRetries = 3
	s.Alerts.RetryInterval = 5 * time.Second
	s.Alerts.ConnectTimeout = 10 * time.Second
	s.Alerts.SendTimeout = 10 * time.Second
	s.Alerts.Transport = "http"
	s.Alerts.HTTP.Endpoint = "http://localhost:8080/api/alerts"

	s.Power.BatteryCritical = 3.2
	s.Power.BatteryCheckInterval = time.Hour
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	require.NoError(t, conf.ValidateSettings(validSettings()))
}

func TestValidateSettingsRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*conf.Settings)
	}{
		{"empty device id", func(s *conf.Settings) { s.Node.DeviceID = "" }},
		{"zero read interval", func(s *conf.Settings) { s.Sensors.ReadInterval = 0 }},
		{"inverted sensor bounds", func(s *conf.Settings) {
			s.Sensors.Bounds.Moisture = conf.SensorBounds{Min: 100, Max: 0}
		}},
		{"inverted temperature window", func(s *conf.Settings) {
			s.Sensors.TempNormLow = 50
			s.Sensors.TempNormHigh = 10
		}},
		{"threshold above one", func(s *conf.Settings) { s.Model.ConfidenceThreshold = 1.5 }},
		{"negative threshold", func(s *conf.Settings) { s.Model.ConfidenceThreshold = -0.1 }},
		{"zero debounce", func(s *conf.Settings) { s.Model.DebounceCycles = 0 }},
		{"negative alert interval", func(s *conf.Settings) { s.Alerts.MinInterval = -time.Minute }},
		{"zero retries", func(s *conf.Settings) { s.Alerts.MaxRetries = 0 }},
		{"zero send timeout", func(s *conf.Settings) { s.Alerts.SendTimeout = 0 }},
		{"unknown transport", func(s *conf.Settings) { s.Alerts.Transport = "lora" }},
		{"http without endpoint", func(s *conf.Settings) { s.Alerts.HTTP.Endpoint = "" }},
		{"mqtt without broker", func(s *conf.Settings) {
			s.Alerts.Transport = "mqtt"
			s.Alerts.MQTT.Topic = "cropsentry/alerts"
		}},
		{"zero battery threshold", func(s *conf.Settings) { s.Power.BatteryCritical = 0 }},
		{"zero battery check interval", func(s *conf.Settings) { s.Power.BatteryCheckInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			assert.Error(t, conf.ValidateSettings(s))
		})
	}
}

func TestValidateSettingsAcceptsMQTT(t *testing.T) {
	s := validSettings()
	s.Alerts.Transport = "mqtt"
	s.Alerts.MQTT.Broker = "tcp://localhost:1883"
	s.Alerts.MQTT.Topic = "cropsentry/alerts"
	assert.NoError(t, conf.ValidateSettings(s))
}
