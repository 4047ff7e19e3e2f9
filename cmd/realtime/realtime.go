package realtime

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/pipeline"
)

// Command creates the command for continuous duty-cycled monitoring.
func Command(ctx *conf.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Monitor crop conditions continuously",
		Long:  "Run the duty-cycled pipeline: read sensors, classify, dispatch alerts, sleep, repeat.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pipeline.Realtime(ctx.Settings)
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the realtime command.
func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().Duration("interval", viper.GetDuration("sensors.readinterval"), "Duty cycle period")
	cmd.Flags().Bool("simulated", viper.GetBool("sensors.simulated"), "Use the simulated sensor driver")
	cmd.Flags().Float64("threshold", viper.GetFloat64("model.confidencethreshold"), "Minimum confidence for an actionable alert")
	cmd.Flags().String("transport", viper.GetString("alerts.transport"), "Alert transport (\"http\" or \"mqtt\")")
	cmd.Flags().String("broker", viper.GetString("alerts.mqtt.broker"), "MQTT broker URL, e.g. tcp://localhost:1883")
	cmd.Flags().String("endpoint", viper.GetString("alerts.http.endpoint"), "HTTP alert ingestion URL")
	cmd.Flags().Bool("metrics", viper.GetBool("metrics.enabled"), "Enable Prometheus metrics endpoint")
	cmd.Flags().String("listen", viper.GetString("metrics.listen"), "Listen address of metrics endpoint")

	bindings := map[string]string{
		"sensors.readinterval":      "interval",
		"sensors.simulated":         "simulated",
		"model.confidencethreshold": "threshold",
		"alerts.transport":          "transport",
		"alerts.mqtt.broker":        "broker",
		"alerts.http.endpoint":      "endpoint",
		"metrics.enabled":           "metrics",
		"metrics.listen":            "listen",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}
