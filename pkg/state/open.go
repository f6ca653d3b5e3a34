package state

import (
	"context"

	"github.com/matzehuels/stacktile/pkg/errors"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendRedis  Backend = "redis"
	BackendMongo  Backend = "mongo"
	BackendSQLite Backend = "sqlite"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend       Backend
	Dir           string // file
	RedisAddr     string // redis
	MongoURI      string // mongo
	MongoDatabase string // mongo
	SQLitePath    string // sqlite
}

// Open creates the store selected by opts.Backend. An empty backend selects
// the file store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(opts.Dir)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "redis state backend needs an address")
		}
		return NewRedisStore(ctx, opts.RedisAddr)
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongo state backend needs a URI")
		}
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
	case BackendSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown state backend %q", opts.Backend)
	}
}
