package conf

import (
	"github.com/agrisense/cropsentry-go/internal/errors"
)

// ValidateSettings checks that the loaded settings are usable. An invalid
// configuration is fatal at startup, the process must not begin cycling with
// nonsense thresholds or intervals.
func ValidateSettings(s *Settings) error {
	if err := validateNodeSettings(&s.Node); err != nil {
		return err
	}
	if err := validateSensorSettings(&s.Sensors); err != nil {
		return err
	}
	if err := validateModelSettings(&s.Model); err != nil {
		return err
	}
	if err := validateAlertSettings(&s.Alerts); err != nil {
		return err
	}
	return validatePowerSettings(&s.Power)
}

func validateNodeSettings(n *NodeSettings) error {
	if n.DeviceID == "" {
		return errors.Newf("node device id must not be empty").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func validateSensorSettings(s *SensorSettings) error {
	if s.ReadInterval <= 0 {
		return errors.Newf("sensor read interval must be positive, got %v", s.ReadInterval).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	bounds := map[string]SensorBounds{
		"moisture":    s.Bounds.Moisture,
		"temperature": s.Bounds.Temperature,
		"humidity":    s.Bounds.Humidity,
		"audioenergy": s.Bounds.AudioEnergy,
	}
	for name, b := range bounds {
		if b.Min >= b.Max {
			return errors.Newf("sensor bounds for %s must have min < max, got [%v, %v]", name, b.Min, b.Max).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("channel", name).
				Build()
		}
	}
	if s.TempNormLow >= s.TempNormHigh {
		return errors.Newf("temperature normalization window must have low < high, got [%v, %v]", s.TempNormLow, s.TempNormHigh).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func validateModelSettings(m *ModelSettings) error {
	if m.ConfidenceThreshold < 0 || m.ConfidenceThreshold > 1 {
		return errors.Newf("confidence threshold must be between 0 and 1, got %v", m.ConfidenceThreshold).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if m.DebounceCycles < 1 {
		return errors.Newf("debounce cycles must be at least 1, got %d", m.DebounceCycles).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

func validateAlertSettings(a *AlertSettings) error {
	if a.MinInterval < 0 {
		return errors.Newf("minimum alert interval must not be negative, got %v", a.MinInterval).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if a.MaxRetries < 1 {
		return errors.Newf("max alert retries must be at least 1, got %d", a.MaxRetries).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if a.RetryInterval < 0 || a.SendTimeout <= 0 || a.ConnectTimeout <= 0 {
		return errors.Newf("alert retry interval and timeouts must be positive").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	switch a.Transport {
	case "http":
		if a.HTTP.Endpoint == "" {
			return errors.Newf("http transport requires an endpoint").
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	case "mqtt":
		if a.MQTT.Broker == "" || a.MQTT.Topic == "" {
			return errors.Newf("mqtt transport requires broker and topic").
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	default:
		return errors.Newf("unsupported alert transport: %s", a.Transport).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("transport", a.Transport).
			Build()
	}
	return nil
}

func validatePowerSettings(p *PowerSettings) error {
	if p.BatteryCritical <= 0 {
		return errors.Newf("battery critical voltage must be positive, got %v", p.BatteryCritical).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if p.BatteryCheckInterval <= 0 {
		return errors.Newf("battery check interval must be positive, got %v", p.BatteryCheckInterval).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}
