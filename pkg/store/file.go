package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/observability"
)

// FileStore keeps sets and checkpoints as JSON files in a directory:
// <name>.dna.json holds the set in the DNA file format and
// <name>.cursor.json the checkpoint.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store in dir, creating the directory if it
// doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "file store directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create store directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) setPath(name string) string    { return filepath.Join(s.dir, name+".dna.json") }
func (s *FileStore) cursorPath(name string) string { return filepath.Join(s.dir, name+".cursor.json") }

// SaveSet implements [Store].
func (s *FileStore) SaveSet(ctx context.Context, name string, set dna.Set) (err error) {
	defer func() { observability.Store().OnSave(ctx, "file", "set", err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return dna.WriteFile(s.setPath(name), set)
}

// LoadSet implements [Store].
func (s *FileStore) LoadSet(ctx context.Context, name string) (set dna.Set, hit bool, err error) {
	defer func() { observability.Store().OnLoad(ctx, "file", "set", hit, err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, err = dna.ReadFile(s.setPath(name))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return set, true, nil
}

// SaveCursor implements [Store].
func (s *FileStore) SaveCursor(ctx context.Context, name string, cp Checkpoint) (err error) {
	defer func() { observability.Store().OnSave(ctx, "file", "cursor", err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode checkpoint")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.cursorPath(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write checkpoint %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "replace checkpoint %s", path)
	}
	return nil
}

// LoadCursor implements [Store].
func (s *FileStore) LoadCursor(ctx context.Context, name string) (cp Checkpoint, hit bool, err error) {
	defer func() { observability.Store().OnLoad(ctx, "file", "cursor", hit, err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return Checkpoint{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.cursorPath(name))
	if os.IsNotExist(err) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, errors.Wrap(errors.ErrCodeStorage, err, "read checkpoint")
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, errors.Wrap(errors.ErrCodeParse, err, "decode checkpoint %s", s.cursorPath(name))
	}
	return cp, true, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
