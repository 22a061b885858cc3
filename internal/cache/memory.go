package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"book-recs/internal/recommend"
)

// Memory is a bounded in-process history store backed by an LRU cache.
// It is the default history provider for single-instance deployments.
type Memory struct {
	entries *lru.Cache[string, []recommend.Candidate]
}

const defaultMemorySize = 512

// NewMemory creates a memory history tracking up to size targets.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = defaultMemorySize
	}
	entries, err := lru.New[string, []recommend.Candidate](size)
	if err != nil {
		return nil, err
	}
	return &Memory{entries: entries}, nil
}

// LastServed returns a copy of the stored list; callers shuffle results in
// place, so the stored list must stay insulated.
func (m *Memory) LastServed(_ context.Context, targetID string) ([]recommend.Candidate, error) {
	list, ok := m.entries.Get(targetID)
	if !ok {
		return nil, nil
	}
	out := make([]recommend.Candidate, len(list))
	copy(out, list)
	return out, nil
}

func (m *Memory) SetLastServed(_ context.Context, targetID string, list []recommend.Candidate) error {
	stored := make([]recommend.Candidate, len(list))
	copy(stored, list)
	m.entries.Add(targetID, stored)
	return nil
}
