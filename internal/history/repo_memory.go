package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores runs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	runs []Run
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Create stores the run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// List returns runs of kind, newest first, with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, kind string, limit, offset int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)

	r.mu.RLock()
	matched := make([]Run, 0, len(r.runs))
	for _, run := range r.runs {
		if kind == "" || run.Kind == kind {
			matched = append(matched, run)
		}
	}
	r.mu.RUnlock()

	if offset >= len(matched) {
		return []Run{}, nil
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	end := len(matched)
	if offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
