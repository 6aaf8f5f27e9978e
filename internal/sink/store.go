package sink

import (
	"context"

	"github.com/muurk/budgetgrid/internal/grid"
)

// Store persists one commit. Implementations are called from a single
// goroutine at a time.
type Store interface {
	Save(ctx context.Context, intent grid.CommitIntent) error
	Close() error
}

// StoreFunc adapts a function to Store
type StoreFunc func(ctx context.Context, intent grid.CommitIntent) error

// Save implements Store
func (f StoreFunc) Save(ctx context.Context, intent grid.CommitIntent) error {
	return f(ctx, intent)
}

// Close implements Store
func (f StoreFunc) Close() error {
	return nil
}
