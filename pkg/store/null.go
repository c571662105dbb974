package store

import (
	"context"

	"github.com/matzehuels/traitforge/pkg/dna"
)

// NullStore is a no-op store that never keeps anything.
// Used when checkpointing is disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// SaveSet does nothing.
func (NullStore) SaveSet(context.Context, string, dna.Set) error { return nil }

// LoadSet always misses.
func (NullStore) LoadSet(context.Context, string) (dna.Set, bool, error) { return nil, false, nil }

// SaveCursor does nothing.
func (NullStore) SaveCursor(context.Context, string, Checkpoint) error { return nil }

// LoadCursor always misses.
func (NullStore) LoadCursor(context.Context, string) (Checkpoint, bool, error) {
	return Checkpoint{}, false, nil
}

// Close does nothing.
func (NullStore) Close() error { return nil }

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
