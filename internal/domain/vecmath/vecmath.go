// Package vecmath holds the small amount of float32 vector arithmetic shared by
// retrieval and personalization. Accumulation happens in float64.
package vecmath

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Mismatched lengths, empty vectors and zero-norm vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// CosineDistance returns 1 - Cosine(a, b), the distance reported by cosine vector indexes.
func CosineDistance(a, b []float32) float64 {
	return 1 - Cosine(a, b)
}

// Mean returns the element-wise mean of vecs. Vectors whose length differs from the
// first one are skipped. Returns nil when no vector contributes.
func Mean(vecs [][]float32) []float32 {
	weights := make([]float64, len(vecs))
	for i := range weights {
		weights[i] = 1
	}
	return WeightedMean(vecs, weights)
}

// WeightedMean returns sum(w_i * v_i) / sum(w_i). When the weights sum to zero the
// plain mean is returned instead. Returns nil on empty input or mismatched weights.
func WeightedMean(vecs [][]float32, weights []float64) []float32 {
	if len(vecs) == 0 || len(vecs) != len(weights) {
		return nil
	}

	dim := len(vecs[0])
	if dim == 0 {
		return nil
	}

	var total float64
	for i, v := range vecs {
		if len(v) == dim {
			total += weights[i]
		}
	}
	if total == 0 {
		return Mean(vecs)
	}

	acc := make([]float64, dim)
	for i, v := range vecs {
		if len(v) != dim {
			continue
		}
		for j, x := range v {
			acc[j] += weights[i] * float64(x)
		}
	}

	out := make([]float32, dim)
	for j := range acc {
		out[j] = float32(acc[j] / total)
	}
	return out
}

// MinMax rescales values linearly into [0, 1]. The second return value is false when
// all values are equal (or the slice is empty) and values is returned untouched.
func MinMax(values []float64) ([]float64, bool) {
	if len(values) == 0 {
		return values, false
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return values, false
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out, true
}
