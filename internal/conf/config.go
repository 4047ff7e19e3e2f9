// Package conf defines the settings for the CropSentry node and functions to
// load and validate them.
package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// SensorBounds declares the plausible physical range for one sensor channel.
// Readings outside the range are replaced with the last known-good value.
type SensorBounds struct {
	Min float64
	Max float64
}

// SensorSettings contains sensor acquisition configuration.
type SensorSettings struct {
	ReadInterval time.Duration // time between duty cycles
	Simulated    bool          // use the simulated driver instead of hardware
	Bounds       struct {
		Moisture    SensorBounds // soil moisture, percent
		Temperature SensorBounds // air temperature, celsius
		Humidity    SensorBounds // relative humidity, percent
		AudioEnergy SensorBounds // normalized acoustic energy
	}
	// Temperature window used for feature normalization, not plausibility.
	TempNormLow  float64
	TempNormHigh float64
}

// ModelSettings contains inference engine configuration.
type ModelSettings struct {
	Path                string  // path to model artifact, empty for embedded default
	ConfidenceThreshold float64 // minimum confidence for an actionable alert
	DebounceCycles      int     // consecutive qualifying cycles before alerting
}

// MQTTSettings contains settings for the MQTT transport.
type MQTTSettings struct {
	Broker   string // e.g. tcp://localhost:1883
	Topic    string
	Username string
	Password string
}

// HTTPSettings contains settings for the HTTP transport.
type HTTPSettings struct {
	Endpoint string // alert ingestion URL
}

// AlertSettings contains dispatcher configuration.
type AlertSettings struct {
	MinInterval    time.Duration // rate-limit window per alert type
	MaxRetries     int
	RetryInterval  time.Duration
	ConnectTimeout time.Duration
	SendTimeout    time.Duration
	Transport      string // "http" or "mqtt"
	MQTT           MQTTSettings
	HTTP           HTTPSettings
}

// PowerSettings contains duty cycle and battery configuration.
type PowerSettings struct {
	BatteryCritical      float64       // volts
	BatteryCheckInterval time.Duration // how often the battery sub-step runs
}

// NodeSettings identifies this device.
type NodeSettings struct {
	DeviceID string
	Name     string
}

// Settings contains all runtime settings for the node.
type Settings struct {
	Debug     bool
	Node      NodeSettings
	Sensors   SensorSettings
	Model     ModelSettings
	Alerts    AlertSettings
	Power     PowerSettings
	Datastore struct {
		Enabled bool
		Path    string // sqlite database file
	}
	Metrics struct {
		Enabled bool
		Listen  string // debug listener address, e.g. :9090
	}
}

// Load reads settings from the config file (if any), environment and defaults.
func Load(configPath string) (*Settings, error) {
	setDefaults()

	viper.SetEnvPrefix("cropsentry")
	viper.AutomaticEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/cropsentry")
		if err := viper.ReadInConfig(); err != nil {
			// Missing config file is fine, defaults apply.
			var notFound viper.ConfigFileNotFoundError
			if !asConfigFileNotFound(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling settings: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

func asConfigFileNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	nf, ok := err.(viper.ConfigFileNotFoundError)
	if ok {
		*target = nf
	}
	return ok
}
