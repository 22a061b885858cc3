package store

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, id string) (Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Item), args.Error(1)
}

func (m *MockStore) GetItems(ctx context.Context, ids []string) (map[string]Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]Item), args.Error(1)
}

func (m *MockStore) ListAllTitles(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) GetEmbeddingMeta(ctx context.Context, itemID string) (EmbeddingMeta, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(EmbeddingMeta), args.Error(1)
}

func (m *MockStore) ListEmbeddingMetas(ctx context.Context) ([]EmbeddingMeta, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]EmbeddingMeta), args.Error(1)
}

func (m *MockStore) UpsertEmbeddingMeta(ctx context.Context, meta EmbeddingMeta) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}
