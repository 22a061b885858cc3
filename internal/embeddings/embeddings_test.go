package embeddings

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        Vector{1, 0, 0},
			b:        Vector{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        Vector{1, 0},
			b:        Vector{0, 1},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        Vector{1, 0},
			b:        Vector{-1, 0},
			expected: -1.0,
		},
		{
			name:     "empty vectors",
			a:        Vector{},
			b:        Vector{},
			expected: 0.0,
		},
		{
			name:     "one empty vector",
			a:        Vector{},
			b:        Vector{1, 2},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        Vector{0, 0},
			b:        Vector{1, 1},
			expected: 0.0,
		},
		{
			// Mismatched lengths compare over the shorter prefix.
			name:     "different length vectors",
			a:        Vector{1, 2},
			b:        Vector{1, 2, 3},
			expected: 1.0,
		},
		{
			name:     "normalized vectors 45 degrees",
			a:        Vector{1, 0},
			b:        Vector{0.707, 0.707},
			expected: 0.707,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("got %f, want %f", result, tt.expected)
			}
		})
	}
}

func TestCosineSimilaritySelf(t *testing.T) {
	// The epsilon in the denominator keeps low-magnitude self-similarity
	// just under one.
	vectors := []Vector{
		{1},
		{0.5, -0.25, 3},
		{1e-3, 2e-3, 3e-3, 4e-3},
	}
	for _, v := range vectors {
		got := CosineSimilarity(v, v)
		if got > 1.0 || got < 1.0-1e-3 {
			t.Errorf("CosineSimilarity(%v, %v) = %f, want just under 1", v, v, got)
		}
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := Vector{0.1, -0.7, 2.5, 0}
	b := Vector{1.3, 0.4, -0.2}
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Errorf("similarity is not symmetric: %f vs %f", CosineSimilarity(a, b), CosineSimilarity(b, a))
	}
}

func TestDeterministicEmbedder(t *testing.T) {
	e := NewDeterministicEmbedder(32)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "the left hand of darkness")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	v2, err := e.Embed(ctx, "the left hand of darkness")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(v1, v2) {
		t.Error("same input produced different vectors")
	}
	if len(v1) != 32 {
		t.Errorf("len = %d, want 32", len(v1))
	}

	v3, _ := e.Embed(ctx, "a wizard of earthsea")
	if reflect.DeepEqual(v1, v3) {
		t.Error("different inputs produced identical vectors")
	}

	if got := CosineSimilarity(v1, v2); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("self similarity = %f, want ~1", got)
	}
}

func TestDeterministicEmbedderDefaultDim(t *testing.T) {
	e := NewDeterministicEmbedder(0)
	v, err := e.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != 32 {
		t.Errorf("len = %d, want default 32", len(v))
	}
}
