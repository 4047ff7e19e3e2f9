package once

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/pipeline"
)

// Command creates the command for running a single duty cycle.
func Command(ctx *conf.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single duty cycle and print the result",
		Long:  "Read sensors once, classify and print the decision. Useful for field commissioning.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pipeline.Once(context.Background(), ctx.Settings)
		},
	}
}
