package benchmark

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrisense/cropsentry-go/internal/conf"
	"github.com/agrisense/cropsentry-go/internal/feature"
	"github.com/agrisense/cropsentry-go/internal/inference"
	"github.com/agrisense/cropsentry-go/internal/sensor"
)

// iterations holds the iteration count flag value
var iterations int

func Command(ctx *conf.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run inference latency benchmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 || iterations > 1_000_000 {
				return fmt.Errorf("iterations must be between 1 and 1000000, got %d", iterations)
			}
			return runBenchmark(ctx.Settings, iterations)
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 1000, "number of inference iterations (1-1000000)")

	return cmd
}

func runBenchmark(settings *conf.Settings, n int) error {
	model, err := inference.LoadModel(settings.Model.Path)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	engine := inference.NewEngine(model)

	// Feed the engine realistic inputs: simulated readings across all crop
	// conditions, normalized the same way the pipeline does.
	port := sensor.NewSimulated(sensor.ScenarioMixed, 42)
	acquirer := sensor.NewAcquirer(port, &settings.Sensors)
	extractor := feature.NewExtractor(&settings.Sensors)

	bctx := context.Background()
	vectors := make([]feature.Vector, 64)
	for i := range vectors {
		vectors[i] = extractor.Extract(acquirer.Acquire(bctx))
	}

	// Warmup to fault in buffers before timing.
	for range 16 {
		if _, err := engine.Infer(vectors[0]); err != nil {
			return fmt.Errorf("inference failed during warmup: %w", err)
		}
	}

	fmt.Printf("Running %d inference iterations (model %s)...\n", n, engine.ModelVersion())

	latencies := make([]time.Duration, 0, n)
	var total time.Duration
	start := time.Now()
	for i := range n {
		result, err := engine.Infer(vectors[i%len(vectors)])
		if err != nil {
			return fmt.Errorf("inference failed at iteration %d: %w", i, err)
		}
		latencies = append(latencies, result.Latency)
		total += result.Latency
	}
	wall := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	avg := total / time.Duration(n)
	p95 := latencies[n*95/100]
	p99 := latencies[n*99/100]

	fmt.Printf("\nResults:\n")
	fmt.Printf("Metric       Latency\n")
	fmt.Printf("───────────  ────────────\n")
	fmt.Printf("min          %8d us\n", latencies[0].Microseconds())
	fmt.Printf("avg          %8d us\n", avg.Microseconds())
	fmt.Printf("p95          %8d us\n", p95.Microseconds())
	fmt.Printf("p99          %8d us\n", p99.Microseconds())
	fmt.Printf("max          %8d us\n", latencies[n-1].Microseconds())
	fmt.Printf("\nThroughput: %.0f inferences/sec\n", float64(n)/wall.Seconds())

	return nil
}
