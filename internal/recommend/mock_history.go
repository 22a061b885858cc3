package recommend

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockHistory is a mock implementation of History using testify/mock.
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) LastServed(ctx context.Context, targetID string) ([]Candidate, error) {
	args := m.Called(ctx, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Candidate), args.Error(1)
}

func (m *MockHistory) SetLastServed(ctx context.Context, targetID string, list []Candidate) error {
	args := m.Called(ctx, targetID, list)
	return args.Error(0)
}
