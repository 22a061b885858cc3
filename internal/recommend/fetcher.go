package recommend

import (
	"context"
	"log/slog"
	"strings"

	"book-recs/internal/search"
	"book-recs/internal/store"
)

// Fetcher queries the external search provider and normalizes raw documents
// into Candidates at the boundary.
type Fetcher struct {
	provider search.Provider
	log      *slog.Logger
}

// NewFetcher creates a fetcher over the given provider.
func NewFetcher(provider search.Provider, log *slog.Logger) *Fetcher {
	return &Fetcher{provider: provider, log: log}
}

// BuildQuery joins the item's descriptive fields into the search text. An
// empty result means the caller must skip fetching entirely.
func BuildQuery(item store.Item) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{item.Title, item.Author, item.Notes} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// FetchLimit sizes the provider request so enough candidates survive
// filtering: clamp(topK*6, 20, 100).
func FetchLimit(topK int) int {
	limit := topK * 6
	if limit < 20 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

// Fetch issues the primary query and, when it comes back too thin and a
// narrower fallback query exists, one widening fetch with a doubled limit.
// Merged results keep the first occurrence per normalized title, primary
// results first. Provider failures degrade to an empty contribution; only a
// cancelled parent context is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, query, fallbackQuery string, topK int, exclude map[string]bool) ([]Candidate, error) {
	limit := FetchLimit(topK)
	primary, err := f.fetchOne(ctx, query, limit, exclude)
	if err != nil {
		return nil, err
	}

	need := topK
	if need > 2 {
		need = 2
	}
	fallbackQuery = strings.TrimSpace(fallbackQuery)
	if len(primary) >= need || fallbackQuery == "" || fallbackQuery == strings.TrimSpace(query) {
		return primary, nil
	}

	widenedLimit := limit * 2
	if widenedLimit > 100 {
		widenedLimit = 100
	}
	widened, err := f.fetchOne(ctx, fallbackQuery, widenedLimit, exclude)
	if err != nil {
		return nil, err
	}
	return mergeFirstSeen(primary, widened), nil
}

func (f *Fetcher) fetchOne(ctx context.Context, query string, limit int, exclude map[string]bool) ([]Candidate, error) {
	docs, err := f.provider.Search(ctx, query, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.log.Warn("search fetch degraded", "query", query, "err", err)
		return nil, nil
	}

	out := make([]Candidate, 0, len(docs))
	for _, d := range docs {
		c := normalizeDoc(d)
		key := normalizeTitle(c.Title)
		if key == "" || exclude[key] {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// normalizeDoc converts a raw provider document into a Candidate. Author is
// the first listed name.
func normalizeDoc(d search.Doc) Candidate {
	author := ""
	if len(d.AuthorNames) > 0 {
		author = strings.TrimSpace(d.AuthorNames[0])
	}
	return Candidate{
		Title:       strings.TrimSpace(d.Title),
		Author:      author,
		ExternalKey: strings.TrimSpace(d.ExternalKey),
		Source:      SourceWeb,
	}
}

func mergeFirstSeen(primary, widened []Candidate) []Candidate {
	merged := make([]Candidate, 0, len(primary)+len(widened))
	seen := make(map[string]bool, len(primary)+len(widened))
	for _, list := range [][]Candidate{primary, widened} {
		for _, c := range list {
			key := normalizeTitle(c.Title)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}
	return merged
}
