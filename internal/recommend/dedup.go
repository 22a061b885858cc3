package recommend

import (
	"context"
	"log/slog"
)

// Deduper selects up to n candidates with unique normalized titles, honoring
// an exclusion set when possible. When nothing survives it falls back to
// rotating the previously served list, so sparse external data never produces
// an empty response while any prior data exists.
type Deduper struct {
	history History
	log     *slog.Logger
}

// NewDeduper creates a deduper; history may be nil to disable the rotate
// fallback.
func NewDeduper(history History, log *slog.Logger) *Deduper {
	return &Deduper{history: history, log: log}
}

// Apply runs the layered selection for one target:
// strict (exclusions honored), relaxed (exclusions ignored), then rotation of
// the last served list. Any non-empty fresh result replaces the stored list.
func (d *Deduper) Apply(ctx context.Context, targetID string, candidates []Candidate, exclude map[string]bool, n int) []Candidate {
	out := selectUnique(candidates, exclude, n)
	if len(out) < n {
		out = selectUnique(candidates, nil, n)
	}
	if len(out) > 0 {
		d.record(ctx, targetID, out)
		return out
	}

	prev := d.lastServed(ctx, targetID)
	if len(prev) == 0 {
		return out
	}
	rotated := make([]Candidate, 0, len(prev))
	rotated = append(rotated, prev[1:]...)
	rotated = append(rotated, prev[0])
	// Persist the rotated order so consecutive fallbacks keep rotating.
	d.record(ctx, targetID, rotated)
	if len(rotated) > n {
		rotated = rotated[:n]
	}
	return rotated
}

// selectUnique walks candidates in order, keeping the first occurrence of
// each normalized title that is not excluded, up to n entries. A nil exclude
// map skips only intra-pool duplicates.
func selectUnique(candidates []Candidate, exclude map[string]bool, n int) []Candidate {
	out := make([]Candidate, 0, n)
	seen := make(map[string]bool, n)
	for _, c := range candidates {
		if len(out) == n {
			break
		}
		key := normalizeTitle(c.Title)
		if seen[key] || exclude[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func (d *Deduper) lastServed(ctx context.Context, targetID string) []Candidate {
	if d.history == nil {
		return nil
	}
	prev, err := d.history.LastServed(ctx, targetID)
	if err != nil {
		d.log.Debug("history read failed", "target_id", targetID, "err", err)
		return nil
	}
	return prev
}

func (d *Deduper) record(ctx context.Context, targetID string, list []Candidate) {
	if d.history == nil {
		return
	}
	if err := d.history.SetLastServed(ctx, targetID, list); err != nil {
		d.log.Debug("history write failed", "target_id", targetID, "err", err)
	}
}
