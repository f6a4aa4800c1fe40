package kws

import "math"

// Quantize converts a real value to int8 using the affine scale/zero-point
// mapping. When both scale and zeroPoint are zero the value passes through
// unscaled (the convention for non-quantized tensors); the result is always
// clamped to the int8 range.
func Quantize(value, scale, zeroPoint float32) int8 {
	if scale == 0 && zeroPoint == 0 {
		return clampInt8(math.Round(float64(value)))
	}
	return clampInt8(math.Round(float64(value/scale + zeroPoint)))
}

// Dequantize converts an int8 back to a real value. The round trip
// Dequantize(Quantize(x)) is within one quantization step of x whenever
// scale is non-zero and x is in range.
func Dequantize(value int8, scale, zeroPoint float32) float32 {
	if scale == 0 && zeroPoint == 0 {
		return float32(value)
	}
	return (float32(value) - zeroPoint) * scale
}

// DequantizeToRange dequantizes and rescales into [-newRange, newRange],
// clipping symmetrically. Useful for turning model output back into sample
// amplitudes.
func DequantizeToRange(value int8, scale, zeroPoint, newRange float32) float32 {
	deq := (float32(value) - zeroPoint) * scale
	return clip(deq*newRange, newRange)
}

func clip(value, limit float32) float32 {
	if value > limit {
		return limit
	}
	if value < -limit {
		return -limit
	}
	return value
}

func clampInt8(v float64) int8 {
	if v < -128 {
		return -128
	}
	if v > 127 {
		return 127
	}
	return int8(v)
}
