// Package inference implements the quantized dense-network classifier that
// maps feature vectors to crop condition predictions.
package inference

import "math"

// Int8 representable range for quantized tensor values.
const (
	QuantMin = -128
	QuantMax = 127
)

// QuantParams holds the affine quantization parameters of one tensor.
type QuantParams struct {
	Scale     float64 `json:"scale"`
	ZeroPoint int     `json:"zero_point"`
}

// Quantize maps a continuous value to the signed-byte domain:
// q = round(x / scale) + zeroPoint, clamped to the representable range.
func (p QuantParams) Quantize(x float64) int8 {
	q := int(math.Round(x/p.Scale)) + p.ZeroPoint
	return clampInt8(q)
}

// Dequantize maps a quantized value back to the continuous domain:
// x = (q - zeroPoint) * scale. The round trip error is bounded by one
// quantization step.
func (p QuantParams) Dequantize(q int8) float64 {
	return float64(int(q)-p.ZeroPoint) * p.Scale
}

func clampInt8(v int) int8 {
	if v < QuantMin {
		return QuantMin
	}
	if v > QuantMax {
		return QuantMax
	}
	return int8(v)
}
