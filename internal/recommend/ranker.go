package recommend

import (
	"sort"

	"book-recs/internal/embeddings"
)

// ItemVector pairs an item id with its stored embedding.
type ItemVector struct {
	ItemID string
	Vector embeddings.Vector
}

// RankedItem is one scored entry, ordered best-first.
type RankedItem struct {
	ItemID string
	Score  float64
}

// RankByVector scores every candidate against the target vector and orders
// the result descending by score. Equal scores keep their input order.
func RankByVector(target embeddings.Vector, candidates []ItemVector) []RankedItem {
	ranked := make([]RankedItem, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, RankedItem{
			ItemID: c.ItemID,
			Score:  embeddings.CosineSimilarity(target, c.Vector),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
