package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/observability"
)

// RedisStore keeps sets and checkpoints as JSON strings in Redis, under the
// keys of its [Keyer]. Values never expire.
type RedisStore struct {
	client *redis.Client
	keys   Keyer
}

// NewRedisStore connects to the server at url and checks it with PING.
func NewRedisStore(ctx context.Context, url string, keys Keyer, logger *log.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping redis at %s", opts.Addr)
	}
	if logger != nil {
		logger.Debug("connected to redis", "addr", opts.Addr, "db", opts.DB, "prefix", keys.Prefix())
	}
	return NewRedisStoreWithClient(client, keys), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, keys Keyer) *RedisStore {
	return &RedisStore{client: client, keys: keys}
}

// SaveSet implements [Store].
func (s *RedisStore) SaveSet(ctx context.Context, name string, set dna.Set) (err error) {
	defer func() { observability.Store().OnSave(ctx, "redis", "set", err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := dna.WriteJSON(&buf, set); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keys.SetKey(name), buf.Bytes(), 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save set %s", name)
	}
	return nil
}

// LoadSet implements [Store].
func (s *RedisStore) LoadSet(ctx context.Context, name string) (set dna.Set, hit bool, err error) {
	defer func() { observability.Store().OnLoad(ctx, "redis", "set", hit, err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return nil, false, err
	}
	data, err := s.client.Get(ctx, s.keys.SetKey(name)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "load set %s", name)
	}
	set, err = dna.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	return set, true, nil
}

// SaveCursor implements [Store].
func (s *RedisStore) SaveCursor(ctx context.Context, name string, cp Checkpoint) (err error) {
	defer func() { observability.Store().OnSave(ctx, "redis", "cursor", err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return err
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode checkpoint")
	}
	if err := s.client.Set(ctx, s.keys.CursorKey(name), data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save checkpoint %s", name)
	}
	return nil
}

// LoadCursor implements [Store].
func (s *RedisStore) LoadCursor(ctx context.Context, name string) (cp Checkpoint, hit bool, err error) {
	defer func() { observability.Store().OnLoad(ctx, "redis", "cursor", hit, err) }()
	if err := errors.ValidateSetName(name); err != nil {
		return Checkpoint{}, false, err
	}
	data, err := s.client.Get(ctx, s.keys.CursorKey(name)).Bytes()
	if err == redis.Nil {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, errors.Wrap(errors.ErrCodeStorage, err, "load checkpoint %s", name)
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, errors.Wrap(errors.ErrCodeParse, err, "decode checkpoint %s", name)
	}
	return cp, true, nil
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
