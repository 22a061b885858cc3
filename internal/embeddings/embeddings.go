package embeddings

import (
	"context"
	"math"
)

// Vector is a simple float32 slice wrapper.
type Vector []float32

// Embedder defines the embedding interface.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

const epsilon = 1e-8

// CosineSimilarity computes dot(a,b) / (|a|*|b| + epsilon) over the
// overlapping index range of the two vectors. Mismatched lengths are
// compared over the shorter prefix; a zero-norm operand yields a score
// near zero rather than a division error.
func CosineSimilarity(a, b Vector) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + epsilon)
}
