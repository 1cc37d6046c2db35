package relevance

import (
	"math"
	"testing"
)

func TestScore_Clamping(t *testing.T) {
	tests := []struct {
		base     float64
		boost    float64
		expected float64
	}{
		{0.9, 0.5, 1.0},
		{0.1, 0.0, 0.1},
		{0.5, 0.5, 1.0},
		{0.5, 0.0, 0.5},
		{0.0, -0.5, 0.0},
		{1.5, 0.0, 1.0},
	}

	for _, tt := range tests {
		got := Score(tt.base, tt.boost)
		if got != tt.expected {
			t.Errorf("Score(%v, %v) = %v, want %v", tt.base, tt.boost, got, tt.expected)
		}
	}
}

func TestCosineSimilarity_NeutralDefaults(t *testing.T) {
	zero := make([]float64, 384)

	if got := CosineSimilarity(nil, []float64{1, 2, 3}); got != 0.5 {
		t.Errorf("Expected 0.5 for nil vector, got %v", got)
	}
	if got := CosineSimilarity([]float64{}, []float64{1}); got != 0.5 {
		t.Errorf("Expected 0.5 for empty vector, got %v", got)
	}
	if got := CosineSimilarity(zero, zero); got != 0.5 {
		t.Errorf("Expected 0.5 for zero vectors, got %v", got)
	}
	if got := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}); got != 0.5 {
		t.Errorf("Expected 0.5 for mismatched lengths, got %v", got)
	}
}

func TestCosineSimilarity_Rescaling(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{1, 0}
	opposite := []float64{-1, 0}
	orthogonal := []float64{0, 1}

	if got := CosineSimilarity(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Identical vectors: expected 1.0, got %v", got)
	}
	if got := CosineSimilarity(a, opposite); math.Abs(got-0.0) > 1e-9 {
		t.Errorf("Opposite vectors: expected 0.0, got %v", got)
	}
	if got := CosineSimilarity(a, orthogonal); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Orthogonal vectors: expected 0.5, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-1.4, -1.0, 1.0); got != -1.0 {
		t.Errorf("Clamp(-1.4) = %v, want -1.0", got)
	}
	if got := Clamp(2.0, 0.0, 1.0); got != 1.0 {
		t.Errorf("Clamp(2.0) = %v, want 1.0", got)
	}
	if got := Clamp(0.3, 0.0, 1.0); got != 0.3 {
		t.Errorf("Clamp(0.3) = %v, want 0.3", got)
	}
}
