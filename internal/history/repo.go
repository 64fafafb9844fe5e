package history

import "context"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Repo defines persistence operations for runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	// List returns runs newest first. An empty kind matches every kind.
	List(ctx context.Context, kind string, limit, offset int) ([]Run, error)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
