package store

import (
	"context"
	"errors"
	"time"

	"book-recs/internal/embeddings"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrEmbeddingNotFound = errors.New("embedding not found")
)

// Item is a catalog record. Items are written by the catalog service; this
// module only reads them. The json tags shape the recommendation responses
// that embed items directly.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingMeta is the indexed representation of an item: an LLM-derived
// summary and tags plus the embedding vector, keyed by item id.
type EmbeddingMeta struct {
	ItemID    string
	Summary   string
	Tags      []string
	Embedding embeddings.Vector
	UpdatedAt time.Time
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	Get(ctx context.Context, id string) (Item, error)
	GetItems(ctx context.Context, ids []string) (map[string]Item, error)
	ListAllTitles(ctx context.Context) ([]string, error)
	GetEmbeddingMeta(ctx context.Context, itemID string) (EmbeddingMeta, error)
	ListEmbeddingMetas(ctx context.Context) ([]EmbeddingMeta, error)
	UpsertEmbeddingMeta(ctx context.Context, meta EmbeddingMeta) error
}
