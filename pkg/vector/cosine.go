package vector

import "math"

// Cosine returns the cosine similarity of a and b. Empty, zero-magnitude
// or mismatched vectors score -1.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return -1
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Distance is the cosine distance used to order query results.
func Distance(a, b []float32) float64 {
	return 1 - Cosine(a, b)
}
