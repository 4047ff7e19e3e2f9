package inference_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/cropsentry-go/internal/feature"
	"github.com/agrisense/cropsentry-go/internal/inference"
)

func TestQuantizeRoundTrip(t *testing.T) {
	p := inference.QuantParams{Scale: 1.0 / 255.0, ZeroPoint: -128}

	for _, x := range []float64{0, 0.1, 0.25, 0.5, 0.63, 0.9, 1.0} {
		q := p.Quantize(x)
		back := p.Dequantize(q)
		assert.InDelta(t, x, back, p.Scale, "round trip of %v", x)
	}
}

func TestQuantizeClampsToInt8Range(t *testing.T) {
	p := inference.QuantParams{Scale: 1.0 / 255.0, ZeroPoint: -128}

	assert.Equal(t, int8(inference.QuantMax), p.Quantize(5.0))
	assert.Equal(t, int8(inference.QuantMin), p.Quantize(-5.0))
}

func TestLoadModelEmbedded(t *testing.T) {
	model, err := inference.LoadModel("")
	require.NoError(t, err)

	assert.Equal(t, inference.DefaultModelVersion, model.Version)
	assert.Equal(t, []int{4, 64, 32, 16, 3}, model.Topology)
	assert.Equal(t, inference.InputSize, model.Topology[0])
	assert.Equal(t, inference.NumClasses, model.Topology[len(model.Topology)-1])
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := inference.LoadModel("/nonexistent/model.json")
	require.Error(t, err)
}

// identityParams is a quantization domain wide enough that the tiny test
// models below never clamp.
var identityParams = inference.QuantParams{Scale: 0.01, ZeroPoint: 0}

func singleLayerModel(weights [][]int8, bias []int32) *inference.Model {
	return &inference.Model{
		Version:  "test-model",
		Topology: []int{4, 3},
		Input:    inference.QuantParams{Scale: 1.0 / 255.0, ZeroPoint: -128},
		Layers: []inference.DenseLayer{{
			Weights:     weights,
			Bias:        bias,
			WeightScale: 1.0 / 127.0,
			Output:      identityParams,
			Activation:  "none",
		}},
	}
}

func TestInferTieResolvesToLowestClassIndex(t *testing.T) {
	// Zero weights and biases give every class the same score.
	model := singleLayerModel(
		[][]int8{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		[]int32{0, 0, 0},
	)
	require.NoError(t, model.Validate())

	engine := inference.NewEngine(model)
	result, err := engine.Infer(feature.Vector{0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)

	assert.Equal(t, result.RawScores[0], result.RawScores[1])
	assert.Equal(t, result.RawScores[1], result.RawScores[2])
	assert.Equal(t, inference.ClassNormal, result.PredictedClass)
}

func TestInferConfidenceClampedToUnitInterval(t *testing.T) {
	// Large positive bias pushes the raw winning score well above 1.
	model := singleLayerModel(
		[][]int8{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		[]int32{100000, 0, 0},
	)
	require.NoError(t, model.Validate())

	engine := inference.NewEngine(model)
	result, err := engine.Infer(feature.Vector{0, 0, 0, 0})
	require.NoError(t, err)

	assert.Greater(t, result.RawScores[0], 1.0)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, inference.ClassNormal, result.PredictedClass)
}

func TestInferKnownConditions(t *testing.T) {
	model, err := inference.LoadModel("")
	require.NoError(t, err)
	engine := inference.NewEngine(model)

	// One quantization step of the output tensor.
	step := model.OutputParams().Scale

	tests := []struct {
		name           string
		features       feature.Vector
		wantClass      inference.Class
		wantConfidence float64
	}{
		{
			name:           "healthy crop conditions",
			features:       feature.Vector{0.5, 0.375, 0.65, 0.15},
			wantClass:      inference.ClassNormal,
			wantConfidence: 0.90,
		},
		{
			name:           "dry soil and heat",
			features:       feature.Vector{0.25, 0.625, 0.35, 0.25},
			wantClass:      inference.ClassWaterStress,
			wantConfidence: 0.925,
		},
		{
			name:           "elevated acoustic activity",
			features:       feature.Vector{0.45, 0.45, 0.55, 0.75},
			wantClass:      inference.ClassPestRisk,
			wantConfidence: 0.80,
		},
		{
			name:           "field reference reading",
			features:       feature.Vector{0.255, 0.63, 0.321, 0.1},
			wantClass:      inference.ClassWaterStress,
			wantConfidence: 0.94,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Infer(tt.features)
			require.NoError(t, err)

			assert.Equal(t, tt.wantClass, result.PredictedClass)
			assert.InDelta(t, tt.wantConfidence, result.Confidence, step+1e-9)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestInferLatencyRecorded(t *testing.T) {
	model, err := inference.LoadModel("")
	require.NoError(t, err)
	engine := inference.NewEngine(model)

	result, err := engine.Infer(feature.Vector{0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Latency.Nanoseconds(), int64(0))
	assert.Less(t, result.Latency, time.Second)
}

func TestModelValidate(t *testing.T) {
	valid := func() *inference.Model {
		return singleLayerModel(
			[][]int8{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}},
			[]int32{0, 0, 0},
		)
	}

	tests := []struct {
		name   string
		mutate func(*inference.Model)
	}{
		{"wrong input size", func(m *inference.Model) { m.Topology[0] = 5 }},
		{"wrong output size", func(m *inference.Model) { m.Topology[1] = 2 }},
		{"layer count mismatch", func(m *inference.Model) { m.Topology = []int{4, 8, 3} }},
		{"short weight row", func(m *inference.Model) { m.Layers[0].Weights[1] = []int8{1, 2} }},
		{"missing bias", func(m *inference.Model) { m.Layers[0].Bias = []int32{0} }},
		{"zero weight scale", func(m *inference.Model) { m.Layers[0].WeightScale = 0 }},
		{"negative output scale", func(m *inference.Model) { m.Layers[0].Output.Scale = -0.1 }},
		{"zero point out of range", func(m *inference.Model) { m.Input.ZeroPoint = 200 }},
		{"unknown activation", func(m *inference.Model) { m.Layers[0].Activation = "sigmoid" }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			assert.Error(t, m.Validate())
		})
	}
}
