package store

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/traitforge/pkg/errors"
)

// Backend names returned by [Scheme].
const (
	BackendNull  = "null"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Scheme returns the backend selected by rawURL.
func Scheme(rawURL string) (string, error) {
	switch {
	case rawURL == "", rawURL == "null://", rawURL == "none":
		return BackendNull, nil
	case strings.HasPrefix(rawURL, "file://"):
		return BackendFile, nil
	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		return BackendRedis, nil
	case strings.HasPrefix(rawURL, "mongodb://"), strings.HasPrefix(rawURL, "mongodb+srv://"):
		return BackendMongo, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported store url %q (want file://, redis:// or mongodb://)", rawURL)
}

// Open returns the store for rawURL. An empty URL returns a [NullStore].
// For file URLs everything after "file://" is the directory, so both
// "file://.traitforge" and "file:///var/lib/traitforge" work. For mongodb
// URLs the database is taken from the URL path.
func Open(ctx context.Context, rawURL string, logger *log.Logger) (Store, error) {
	backend, err := Scheme(rawURL)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendFile:
		return NewFileStore(strings.TrimPrefix(rawURL, "file://"))
	case BackendRedis:
		return NewRedisStore(ctx, rawURL, NewKeyer(""), logger)
	case BackendMongo:
		return NewMongoStore(ctx, rawURL, mongoDatabase(rawURL), logger)
	}
	return NewNullStore(), nil
}

// mongoDatabase extracts the database name from a mongodb connection
// string, or "" when it has none.
func mongoDatabase(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return ""
	}
	db := rest[i+1:]
	if j := strings.IndexByte(db, '?'); j >= 0 {
		db = db[:j]
	}
	return db
}
