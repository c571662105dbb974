// Package store persists DNA sets and batch checkpoints.
//
// A [Store] keeps named DNA sets and, per set, the checkpoint of the batch
// driver working through it. Backends:
//
//   - [FileStore]: files in a local directory, the CLI default
//   - [RedisStore]: JSON values in Redis, for renders spread over machines
//   - [MongoStore]: one document per set in MongoDB
//   - [NullStore]: stores nothing, checkpointing disabled
//
// [Open] picks a backend from a URL:
//
//	s, err := store.Open(ctx, "file://.traitforge", logger)
//	s, err := store.Open(ctx, "redis://localhost:6379/0", logger)
//	s, err := store.Open(ctx, "mongodb://localhost:27017/traitforge", logger)
//
// Loads return hit=false, not an error, when nothing is stored under a
// name. Backend failures are STORAGE errors.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/traitforge/pkg/dna"
)

// DefaultSetName names the set when none is configured.
const DefaultSetName = "default"

// Checkpoint records how far a batch has progressed through a set.
type Checkpoint struct {
	// Next is the id of the next job to render.
	Next int `json:"next" bson:"next"`
	// End is the exclusive upper bound of the batch that wrote the checkpoint.
	End int `json:"end" bson:"end"`
	// Fingerprint identifies the set the checkpoint belongs to.
	Fingerprint string `json:"fingerprint" bson:"fingerprint"`
	// Run is the id of the batch run.
	Run string `json:"run,omitempty" bson:"run,omitempty"`
	// UpdatedAt is when the checkpoint was written.
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store persists DNA sets and checkpoints by set name.
type Store interface {
	// SaveSet stores s under name, replacing any previous set.
	SaveSet(ctx context.Context, name string, s dna.Set) error
	// LoadSet returns the set stored under name.
	LoadSet(ctx context.Context, name string) (dna.Set, bool, error)
	// SaveCursor stores the checkpoint for name.
	SaveCursor(ctx context.Context, name string, cp Checkpoint) error
	// LoadCursor returns the checkpoint for name.
	LoadCursor(ctx context.Context, name string) (Checkpoint, bool, error)
	// Close releases backend resources.
	Close() error
}

// Matches reports whether cp was written for a set with the given
// fingerprint.
func (cp Checkpoint) Matches(fingerprint string) bool {
	return cp.Fingerprint == fingerprint
}
