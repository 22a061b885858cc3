package llm

import "context"

// Client is a minimal LLM interface to allow pluggable providers.
// Summarize returns a short description of an item plus topic tags.
type Client interface {
	Summarize(ctx context.Context, text string) (string, []string, error)
}
