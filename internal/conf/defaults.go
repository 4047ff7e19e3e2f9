package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults installs the default configuration values. They mirror the
// firmware defaults of the field-deployed nodes.
func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("node.deviceid", "cropsentry-001")
	viper.SetDefault("node.name", "CropSentry Node")

	viper.SetDefault("sensors.readinterval", 30*time.Second)
	viper.SetDefault("sensors.simulated", false)
	viper.SetDefault("sensors.bounds.moisture.min", 0.0)
	viper.SetDefault("sensors.bounds.moisture.max", 100.0)
	viper.SetDefault("sensors.bounds.temperature.min", -20.0)
	viper.SetDefault("sensors.bounds.temperature.max", 60.0)
	viper.SetDefault("sensors.bounds.humidity.min", 0.0)
	viper.SetDefault("sensors.bounds.humidity.max", 100.0)
	viper.SetDefault("sensors.bounds.audioenergy.min", 0.0)
	viper.SetDefault("sensors.bounds.audioenergy.max", 1.0)
	viper.SetDefault("sensors.tempnormlow", 10.0)
	viper.SetDefault("sensors.tempnormhigh", 50.0)

	viper.SetDefault("model.path", "")
	viper.SetDefault("model.confidencethreshold", 0.70)
	viper.SetDefault("model.debouncecycles", 1)

	viper.SetDefault("alerts.mininterval", 5*time.Minute)
	viper.SetDefault("alerts.maxretries", 3)
	viper.SetDefault("alerts.retryinterval", 5*time.Second)
	viper.SetDefault("alerts.connecttimeout", 10*time.Second)
	viper.SetDefault("alerts.sendtimeout", 10*time.Second)
	viper.SetDefault("alerts.transport", "http")
	viper.SetDefault("alerts.http.endpoint", "http://localhost:8080/api/alerts")
	viper.SetDefault("alerts.mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("alerts.mqtt.topic", "cropsentry/alerts")
	viper.SetDefault("alerts.mqtt.username", "")
	viper.SetDefault("alerts.mqtt.password", "")

	viper.SetDefault("power.batterycritical", 3.2)
	viper.SetDefault("power.batterycheckinterval", time.Hour)

	viper.SetDefault("datastore.enabled", true)
	viper.SetDefault("datastore.path", "cropsentry.db")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", ":9090")
}
