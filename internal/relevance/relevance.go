package relevance

import "math"

// DefaultScore is the base relevance assigned to newly-seen articles.
const DefaultScore = 0.5

// Clamp bounds v to the [min, max] interval.
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Score composes a base relevance score with an additive boost and bounds
// the result to [0, 1].
func Score(base, boost float64) float64 {
	return Clamp(base+boost, 0.0, 1.0)
}

// CosineSimilarity computes the cosine similarity between two embedding
// vectors, rescaled from [-1, 1] to [0, 1]. Empty vectors, mismatched
// lengths and zero norms all yield the neutral 0.5 rather than an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return DefaultScore
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	norms := math.Sqrt(normA) * math.Sqrt(normB)
	if norms == 0 {
		return DefaultScore
	}

	return (dot/norms + 1) / 2
}
