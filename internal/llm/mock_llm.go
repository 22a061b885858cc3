package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Summarize(ctx context.Context, text string) (string, []string, error) {
	args := m.Called(ctx, text)
	var tags []string
	if args.Get(1) != nil {
		tags = args.Get(1).([]string)
	}
	return args.String(0), tags, args.Error(2)
}
