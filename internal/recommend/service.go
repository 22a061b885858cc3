package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"book-recs/internal/store"
)

const (
	// DefaultTopK applies when a request omits top_k.
	DefaultTopK = 5

	minTopK = 1
	maxTopK = 50
)

// ClampTopK bounds a requested result count to the [1, 50] range.
func ClampTopK(topK int) int {
	if topK < minTopK {
		return minTopK
	}
	if topK > maxTopK {
		return maxTopK
	}
	return topK
}

// RankedRecommendation joins a scored item id back to its catalog record.
// Item is nil when the record has since disappeared from the catalog.
type RankedRecommendation struct {
	Score   float64     `json:"score"`
	Tags    []string    `json:"tags"`
	Summary string      `json:"summary"`
	Item    *store.Item `json:"item"`
}

// Service composes the ranker, fetcher, and deduper into the two
// recommendation paths.
type Service struct {
	store   store.Store
	fetcher *Fetcher
	deduper *Deduper
	log     *slog.Logger
}

// NewService creates the orchestrator over its collaborators.
func NewService(st store.Store, fetcher *Fetcher, deduper *Deduper, log *slog.Logger) *Service {
	return &Service{store: st, fetcher: fetcher, deduper: deduper, log: log}
}

// Rank recommends the topK stored items most similar to the target's
// embedding. It fails with store.ErrItemNotFound or store.ErrEmbeddingNotFound
// when the target or its embedding is absent.
func (s *Service) Rank(ctx context.Context, targetID string, topK int) ([]RankedRecommendation, error) {
	topK = ClampTopK(topK)

	if _, err := s.store.Get(ctx, targetID); err != nil {
		return nil, fmt.Errorf("resolve target %s: %w", targetID, err)
	}

	// The target embedding and the candidate corpus are independent reads.
	var (
		targetMeta store.EmbeddingMeta
		metas      []store.EmbeddingMeta
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.store.GetEmbeddingMeta(gctx, targetID)
		if err != nil {
			return fmt.Errorf("target embedding %s: %w", targetID, err)
		}
		targetMeta = m
		return nil
	})
	g.Go(func() error {
		ms, err := s.store.ListEmbeddingMetas(gctx)
		if err != nil {
			return fmt.Errorf("list embeddings: %w", err)
		}
		metas = ms
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]ItemVector, 0, len(metas))
	metaByID := make(map[string]store.EmbeddingMeta, len(metas))
	for _, m := range metas {
		if m.ItemID == targetID {
			continue
		}
		metaByID[m.ItemID] = m
		candidates = append(candidates, ItemVector{ItemID: m.ItemID, Vector: m.Embedding})
	}

	ranked := RankByVector(targetMeta.Embedding, candidates)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	if len(ranked) == 0 {
		return []RankedRecommendation{}, nil
	}

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.ItemID)
	}
	items, err := s.store.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	out := make([]RankedRecommendation, 0, len(ranked))
	for _, r := range ranked {
		meta := metaByID[r.ItemID]
		rec := RankedRecommendation{Score: r.Score, Tags: meta.Tags, Summary: meta.Summary}
		if rec.Tags == nil {
			rec.Tags = []string{}
		}
		if it, ok := items[r.ItemID]; ok {
			itemCopy := it
			rec.Item = &itemCopy
		}
		out = append(out, rec)
	}
	return out, nil
}

// WebRecommend recommends up to topK external candidates related to the
// target item: build query, fetch, dedup, shuffle, truncate. excludeTitles
// carries the currently displayed titles on refresh requests. An empty result
// is a valid success.
func (s *Service) WebRecommend(ctx context.Context, targetID string, topK int, seed *Seed, excludeTitles []string) ([]Candidate, error) {
	topK = ClampTopK(topK)

	item, err := s.store.Get(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("resolve target %s: %w", targetID, err)
	}

	query := BuildQuery(item)
	if query == "" {
		return []Candidate{}, nil
	}

	// The fetch drops only the target's own title inline; the broader corpus
	// exclusions apply at the dedup stage so its relaxed pass can still admit
	// them when nothing else survives.
	fetchExclude := make(map[string]bool, 1)
	if key := normalizeTitle(item.Title); key != "" {
		fetchExclude[key] = true
	}
	candidates, err := s.fetcher.Fetch(ctx, query, item.Title, topK, fetchExclude)
	if err != nil {
		return nil, err
	}

	exclude, err := s.exclusionSet(ctx, item, excludeTitles)
	if err != nil {
		return nil, err
	}
	selected := s.deduper.Apply(ctx, targetID, candidates, exclude, topK)

	Shuffle(selected, NewRand(seed))

	if len(selected) > topK {
		selected = selected[:topK]
	}
	if selected == nil {
		selected = []Candidate{}
	}
	return selected, nil
}

// exclusionSet is the normalized title corpus the strict dedup pass honors:
// every locally known title, the caller's currently displayed titles, and the
// target itself. A store failure degrades to an empty corpus.
func (s *Service) exclusionSet(ctx context.Context, item store.Item, excludeTitles []string) (map[string]bool, error) {
	exclude := make(map[string]bool)
	titles, err := s.store.ListAllTitles(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Warn("exclusion corpus read degraded", "err", err)
	}
	for _, t := range titles {
		if key := normalizeTitle(t); key != "" {
			exclude[key] = true
		}
	}
	for _, t := range excludeTitles {
		if key := normalizeTitle(t); key != "" {
			exclude[key] = true
		}
	}
	if key := normalizeTitle(item.Title); key != "" {
		exclude[key] = true
	}
	return exclude, nil
}
