package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"empty", nil, nil, -1},
		{"zero", []float32{0, 0}, []float32{1, 0}, -1},
		{"mismatched", []float32{1, 0}, []float32{1, 0, 0}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance([]float32{3, 4}, []float32{6, 8}), 1e-9)
	assert.InDelta(t, 1, Distance([]float32{1, 0}, []float32{0, 1}), 1e-9)
}
