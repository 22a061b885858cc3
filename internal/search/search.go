package search

import "context"

// Doc is one raw result from the external full-text index.
type Doc struct {
	Title       string
	AuthorNames []string
	ExternalKey string
}

// Provider queries an external search index for candidate works.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Doc, error)
}
