package llm

import (
	"context"
	"strings"
)

// StubClient is an offline provider that derives a summary and tags from the
// text itself. Useful for local development and tests without an API key.
type StubClient struct{}

// NewStubClient creates the offline client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

const (
	stubSummaryLimit = 240
	stubTagLimit     = 5
)

func (c *StubClient) Summarize(_ context.Context, text string) (string, []string, error) {
	collapsed := strings.Join(strings.Fields(text), " ")
	summary := collapsed
	if len(summary) > stubSummaryLimit {
		summary = strings.TrimSpace(summary[:stubSummaryLimit])
	}

	seen := make(map[string]bool)
	var tags []string
	for _, word := range strings.Fields(strings.ToLower(collapsed)) {
		word = strings.Trim(word, ".,;:!?\"'()[]")
		if len(word) <= 3 || seen[word] {
			continue
		}
		seen[word] = true
		tags = append(tags, word)
		if len(tags) == stubTagLimit {
			break
		}
	}
	return summary, tags, nil
}
