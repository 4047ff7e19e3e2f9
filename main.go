package main

import (
	"fmt"
	"os"

	"github.com/agrisense/cropsentry-go/cmd"
	"github.com/agrisense/cropsentry-go/internal/conf"
)

func main() {
	ctx := &conf.Context{}

	rootCmd := cmd.RootCommand(ctx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
