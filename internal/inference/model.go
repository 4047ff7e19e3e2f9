package inference

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agrisense/cropsentry-go/internal/errors"
)

// NumClasses is the size of the classifier output.
const NumClasses = 3

// InputSize is the number of feature channels the model consumes.
const InputSize = 4

// DenseLayer is one fully connected layer of the quantized network.
// Weights are per-tensor symmetric int8 (zero point 0); biases are int32 in
// the accumulator domain (scale = input scale x weight scale).
type DenseLayer struct {
	Weights     [][]int8    `json:"weights"` // [outputs][inputs]
	Bias        []int32     `json:"bias"`
	WeightScale float64     `json:"weight_scale"`
	Output      QuantParams `json:"output"`
	Activation  string      `json:"activation"` // "relu" or "none"
}

// Model is the pre-trained classifier artifact: topology, quantized weights
// and quantization parameters. It is opaque to the rest of the pipeline.
type Model struct {
	Version  string       `json:"version"`
	Topology []int        `json:"topology"`
	Input    QuantParams  `json:"input"`
	Layers   []DenseLayer `json:"layers"`
}

// OutputParams returns the quantization parameters of the final layer.
func (m *Model) OutputParams() QuantParams {
	return m.Layers[len(m.Layers)-1].Output
}

// LoadModel reads and validates a model artifact from disk. An empty path
// loads the embedded default model.
func LoadModel(path string) (*Model, error) {
	var data []byte
	var err error

	if path == "" {
		data = defaultModelData
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.New(fmt.Errorf("failed to read model artifact: %w", err)).
				Component("inference").
				Category(errors.CategoryModelLoad).
				Context("model_path", path).
				Build()
		}
	}

	model := &Model{}
	if err := json.Unmarshal(data, model); err != nil {
		return nil, errors.New(fmt.Errorf("failed to parse model artifact: %w", err)).
			Component("inference").
			Category(errors.CategoryModelLoad).
			Context("model_path", path).
			Build()
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}

	return model, nil
}

// Validate checks the structural integrity of the artifact: topology,
// weight dimensions and quantization parameter ranges.
func (m *Model) Validate() error {
	fail := func(format string, args ...any) error {
		return errors.Newf(format, args...).
			Component("inference").
			Category(errors.CategoryValidation).
			Context("model_version", m.Version).
			Build()
	}

	if len(m.Topology) < 2 {
		return fail("model topology must have at least input and output, got %v", m.Topology)
	}
	if len(m.Layers) != len(m.Topology)-1 {
		return fail("model has %d layers but topology %v implies %d", len(m.Layers), m.Topology, len(m.Topology)-1)
	}
	if m.Topology[0] != InputSize {
		return fail("model input size %d does not match feature vector size %d", m.Topology[0], InputSize)
	}
	if m.Topology[len(m.Topology)-1] != NumClasses {
		return fail("model output size %d does not match class count %d", m.Topology[len(m.Topology)-1], NumClasses)
	}
	if err := validateParams(m.Input); err != nil {
		return fail("invalid input quantization: %v", err)
	}

	for i := range m.Layers {
		l := &m.Layers[i]
		in, out := m.Topology[i], m.Topology[i+1]
		if len(l.Weights) != out {
			return fail("layer %d has %d weight rows, want %d", i, len(l.Weights), out)
		}
		for j, row := range l.Weights {
			if len(row) != in {
				return fail("layer %d row %d has %d weights, want %d", i, j, len(row), in)
			}
		}
		if len(l.Bias) != out {
			return fail("layer %d has %d biases, want %d", i, len(l.Bias), out)
		}
		if l.WeightScale <= 0 {
			return fail("layer %d weight scale must be positive, got %v", i, l.WeightScale)
		}
		if err := validateParams(l.Output); err != nil {
			return fail("layer %d invalid output quantization: %v", i, err)
		}
		switch l.Activation {
		case "relu", "none":
		default:
			return fail("layer %d has unsupported activation %q", i, l.Activation)
		}
	}

	return nil
}

func validateParams(p QuantParams) error {
	if p.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", p.Scale)
	}
	if p.ZeroPoint < QuantMin || p.ZeroPoint > QuantMax {
		return fmt.Errorf("zero point %d outside int8 range", p.ZeroPoint)
	}
	return nil
}
