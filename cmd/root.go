package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrisense/cropsentry-go/cmd/benchmark"
	"github.com/agrisense/cropsentry-go/cmd/once"
	"github.com/agrisense/cropsentry-go/cmd/realtime"
	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/logging"
)

// configPath holds the --config flag value. It has to be read before
// settings exist, so it cannot live on the Settings struct.
var configPath string

// RootCommand creates and returns the root command.
func RootCommand(ctx *conf.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cropsentry",
		Short: "CropSentry edge monitoring node",
		Long:  "Duty-cycled crop condition monitoring: sensor acquisition, on-device inference and alert dispatch.",
	}

	setupFlags(rootCmd)

	subcommands := []*cobra.Command{
		realtime.Command(ctx),
		once.Command(ctx),
		benchmark.Command(ctx),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		settings, err := conf.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading settings: %w", err)
		}

		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		logging.Init(level)

		ctx.Settings = settings
		return nil
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}
