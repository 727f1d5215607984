package main

import "math"

// Numeric guards shared by every visualizer. Derivations have no error
// channel, so out-of-range inputs are clamped or epsilon-floored here
// instead of rejected.

const (
	// epsDenom floors any normalization denominator.
	epsDenom = 1e-12
	// minTemperature floors temperature-like divisors.
	minTemperature = 0.05
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// softmax returns the temperature-scaled softmax of xs. The temperature is
// floored at minTemperature and the partition sum at epsDenom, so the result
// is always a valid distribution for any finite input.
func softmax(xs []float64, temperature float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	if temperature < minTemperature {
		temperature = minTemperature
	}

	// Subtract the max before exponentiating to avoid overflow.
	maxV := xs[0]
	for _, x := range xs[1:] {
		if x > maxV {
			maxV = x
		}
	}

	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		out[i] = math.Exp((x - maxV) / temperature)
		sum += out[i]
	}
	if sum < epsDenom {
		sum = epsDenom
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// normalizeSum rescales xs in place so it sums to one, guarding against a
// zero denominator. A degenerate input becomes a uniform distribution.
func normalizeSum(xs []float64) []float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	if sum < epsDenom {
		uniform := 1.0 / float64(len(xs))
		for i := range xs {
			xs[i] = uniform
		}
		return xs
	}
	for i := range xs {
		xs[i] /= sum
	}
	return xs
}

// conv2DValid computes a valid (no padding) 2D convolution of input with a
// square kernel. Input rows must all have the same length.
func conv2DValid(input [][]float64, kernel [][]float64) [][]float64 {
	ih := len(input)
	if ih == 0 {
		return nil
	}
	iw := len(input[0])
	kh := len(kernel)
	kw := len(kernel[0])
	oh := ih - kh + 1
	ow := iw - kw + 1
	if oh <= 0 || ow <= 0 {
		return nil
	}

	out := make([][]float64, oh)
	for y := 0; y < oh; y++ {
		out[y] = make([]float64, ow)
		for x := 0; x < ow; x++ {
			acc := 0.0
			for ky := 0; ky < kh; ky++ {
				for kx := 0; kx < kw; kx++ {
					acc += input[y+ky][x+kx] * kernel[ky][kx]
				}
			}
			out[y][x] = acc
		}
	}
	return out
}

func tanhVec(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Tanh(x)
	}
	return out
}
