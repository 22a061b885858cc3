package embeddings

import (
	"context"
	"hash/fnv"
)

// DeterministicEmbedder hashes text into a fixed-size pseudo-random vector.
// It lets the pipeline run without network access; vectors are stable per
// input but carry no semantic meaning.
type DeterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder creates a hash-based embedder with the given dimension.
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEmbedder{dim: dim}
}

func (e *DeterministicEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	vec := make(Vector, e.dim)
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	for i := range vec {
		seed = seed*1099511628211 + 1469598103934665603
		vec[i] = float32(seed%997) / 997.0
	}
	return vec, nil
}
