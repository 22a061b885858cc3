package search

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of Provider using testify/mock.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Search(ctx context.Context, query string, limit int) ([]Doc, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Doc), args.Error(1)
}
