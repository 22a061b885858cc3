package recommend

import "context"

// History remembers the most recently served list per target item so the
// dedup filter can rotate it when no fresh candidates survive.
// Implementations must be safe for concurrent use.
type History interface {
	LastServed(ctx context.Context, targetID string) ([]Candidate, error)
	SetLastServed(ctx context.Context, targetID string, list []Candidate) error
}
