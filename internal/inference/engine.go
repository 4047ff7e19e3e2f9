package inference

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/agrisense/cropsentry-go/internal/errors"
	"github.com/agrisense/cropsentry-go/internal/feature"
	"github.com/agrisense/cropsentry-go/internal/logging"
)

// Class is the predicted crop condition.
type Class int

const (
	ClassNormal Class = iota
	ClassWaterStress
	ClassPestRisk
)

// String returns the class name used in logs.
func (c Class) String() string {
	switch c {
	case ClassNormal:
		return "Normal"
	case ClassWaterStress:
		return "WaterStress"
	case ClassPestRisk:
		return "PestRisk"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Result is the outcome of one forward pass. It is transient: consumed by
// the decision policy and discarded.
type Result struct {
	PredictedClass Class
	Confidence     float64             // dequantized winning score, clamped to [0,1]
	RawScores      [NumClasses]float64 // dequantized scores for all classes
	Latency        time.Duration       // wall clock around the forward pass
}

// Engine runs the quantized forward pass. Access to the internal buffers is
// serialized, matching single-threaded pipeline semantics even if a future
// caller polls concurrently.
type Engine struct {
	model *Model
	mu    sync.Mutex
	log   *slog.Logger

	// pre-allocated activation buffers, one per layer boundary
	buffers [][]int8
}

// NewEngine creates an engine for the given model. The model must already be
// validated by LoadModel.
func NewEngine(model *Model) *Engine {
	buffers := make([][]int8, len(model.Topology))
	for i, n := range model.Topology {
		buffers[i] = make([]int8, n)
	}
	return &Engine{
		model:   model,
		log:     logging.ForService("inference"),
		buffers: buffers,
	}
}

// Infer quantizes the feature vector, runs the dense forward pass and
// dequantizes the class scores. Ties in raw scores resolve to the lowest
// class index.
func (e *Engine) Infer(v feature.Vector) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.buffers[0]) != feature.Size {
		return nil, errors.Newf("model input size %d does not match feature vector size %d",
			len(e.buffers[0]), feature.Size).
			Component("inference").
			Category(errors.CategoryInference).
			Build()
	}

	// Quantize input features into the first activation buffer.
	for i, x := range v {
		e.buffers[0][i] = e.model.Input.Quantize(x)
	}

	start := time.Now()
	inParams := e.model.Input
	for li := range e.model.Layers {
		layer := &e.model.Layers[li]
		if err := e.forward(layer, inParams, e.buffers[li], e.buffers[li+1]); err != nil {
			return nil, err
		}
		inParams = layer.Output
	}
	elapsed := time.Since(start)

	outParams := e.model.OutputParams()
	out := e.buffers[len(e.buffers)-1]

	result := &Result{Latency: elapsed}
	for i := 0; i < NumClasses; i++ {
		result.RawScores[i] = outParams.Dequantize(out[i])
	}

	// Argmax with ties broken by lowest index.
	best := 0
	for i := 1; i < NumClasses; i++ {
		if result.RawScores[i] > result.RawScores[best] {
			best = i
		}
	}
	result.PredictedClass = Class(best)
	result.Confidence = math.Max(0, math.Min(1, result.RawScores[best]))

	e.log.Debug("inference complete",
		"class", result.PredictedClass.String(),
		"confidence", result.Confidence,
		"latency_us", elapsed.Microseconds())

	return result, nil
}

// forward computes one dense layer in the quantized domain: int32 accumulate
// over (q_in - zp_in) x w plus bias, requantized with the layer multiplier.
// ReLU clamps at the output zero point.
func (e *Engine) forward(layer *DenseLayer, in QuantParams, input, output []int8) error {
	if len(layer.Weights) != len(output) || len(layer.Weights[0]) != len(input) {
		return errors.Newf("malformed tensor state: layer expects %dx%d, buffers are %dx%d",
			len(layer.Weights), len(layer.Weights[0]), len(output), len(input)).
			Component("inference").
			Category(errors.CategoryInference).
			Build()
	}

	// Effective requantization multiplier from accumulator domain to the
	// layer's output domain.
	multiplier := in.Scale * layer.WeightScale / layer.Output.Scale

	for o := range layer.Weights {
		var acc int32
		row := layer.Weights[o]
		for i := range row {
			acc += int32(row[i]) * (int32(input[i]) - int32(in.ZeroPoint))
		}
		acc += layer.Bias[o]

		q := layer.Output.ZeroPoint + int(math.Round(multiplier*float64(acc)))
		qc := clampInt8(q)
		if layer.Activation == "relu" && int(qc) < layer.Output.ZeroPoint {
			qc = int8(layer.Output.ZeroPoint)
		}
		output[o] = qc
	}

	return nil
}

// ModelVersion reports the loaded artifact's version string.
func (e *Engine) ModelVersion() string {
	return e.model.Version
}
