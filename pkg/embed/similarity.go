package embed

import (
	"math"

	"github.com/rs/zerolog/log"
)

type ParameterValidationError struct {
	Message string
}

func (e *ParameterValidationError) Error() string {
	return e.Message
}

// CosineSimilarity compares two embeddings of the same length. Comparing
// embeddings of different models or providers is allowed but logged, since
// the result is rarely meaningful. A zero vector has similarity 0.
func CosineSimilarity(a, b Embedding) (float64, error) {
	if len(a.Vector) != len(b.Vector) {
		return 0, &ParameterValidationError{Message: "embeddings must be of the same length to calculate cosine similarity"}
	}

	if a.Model != b.Model || a.Provider != b.Provider {
		log.Warn().
			Str("model_a", a.Model).
			Str("provider_a", a.Provider).
			Str("model_b", b.Model).
			Str("provider_b", b.Provider).
			Msg("calculating cosine similarity between embeddings from different models or providers")
	}

	return cosine(a.Vector, b.Vector), nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	norm := math.Sqrt(normA) * math.Sqrt(normB)
	if norm == 0 {
		return 0
	}
	return dot / norm
}
