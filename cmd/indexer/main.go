package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"book-recs/internal/app"
	"book-recs/internal/httputil"
	"book-recs/internal/queue"
	"book-recs/internal/store"
)

type indexTaskPayload struct {
	ItemID string `json:"item_id"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("indexer worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeIndex, func(ctx context.Context, task queue.Task) error {
			var payload indexTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleIndex(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps, "indexer")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("indexer service stopped", "err", err)
	}
}

func handleIndex(ctx context.Context, deps app.Deps, payload indexTaskPayload) error {
	if payload.ItemID == "" {
		return fmt.Errorf("index task missing item_id")
	}

	item, err := deps.Store.Get(ctx, payload.ItemID)
	if err != nil {
		return fmt.Errorf("failed to load item %s: %w", payload.ItemID, err)
	}

	summary, tags, err := deps.LLM.Summarize(ctx, describeItem(item))
	if err != nil {
		return fmt.Errorf("failed to annotate item %s: %w", item.ID, err)
	}

	vector, err := deps.Embedder.Embed(ctx, embeddingText(item, summary))
	if err != nil {
		return fmt.Errorf("failed to embed item %s: %w", item.ID, err)
	}

	if err := deps.Store.UpsertEmbeddingMeta(ctx, store.EmbeddingMeta{
		ItemID:    item.ID,
		Summary:   summary,
		Tags:      tags,
		Embedding: vector,
	}); err != nil {
		return fmt.Errorf("failed to save embedding meta for %s: %w", item.ID, err)
	}
	deps.Log.Info("item indexed", "item_id", item.ID, "tags", len(tags), "dims", len(vector))
	return nil
}

// describeItem flattens the catalog fields into the text the annotator
// summarizes.
func describeItem(item store.Item) string {
	var builder strings.Builder
	builder.WriteString("Title: ")
	builder.WriteString(item.Title)
	builder.WriteString("\n")
	if item.Author != "" {
		builder.WriteString("Author: ")
		builder.WriteString(item.Author)
		builder.WriteString("\n")
	}
	if item.Notes != "" {
		builder.WriteString("Notes: ")
		builder.WriteString(item.Notes)
		builder.WriteString("\n")
	}
	return builder.String()
}

// embeddingText enriches the raw catalog fields with the derived summary so
// sparse records still embed near their neighbors.
func embeddingText(item store.Item, summary string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{item.Title, item.Author, item.Notes, summary} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
