package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/stacktile/pkg/cache"
	perrors "github.com/matzehuels/stacktile/pkg/errors"
)

// DefaultRedisPrefix namespaces workspace keys in Redis.
const DefaultRedisPrefix = "stacktile:workspace:"

// RedisStore keeps records as JSON strings in Redis, one key per workspace.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := cache.RetryWithBackoff(ctx, func() error {
		return cache.ClassifyRedisError(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisStoreFromClient(client, DefaultRedisPrefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, workspace string) (Record, bool, error) {
	if err := perrors.ValidateWorkspaceKey(workspace); err != nil {
		return Record{}, false, err
	}
	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.recordKey(workspace)).Bytes()
		if errors.Is(err, redis.Nil) {
			data = nil
			return nil
		}
		data = b
		return cache.ClassifyRedisError(err)
	})
	if err != nil {
		return Record{}, false, err
	}
	if data == nil {
		return Record{}, false, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("parse workspace %s: %w", workspace, err)
	}
	return rec, true, nil
}

func (s *RedisStore) Set(ctx context.Context, rec Record) error {
	rec, err := prepare(rec)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal workspace: %w", err)
	}
	return cache.RetryWithBackoff(ctx, func() error {
		return cache.ClassifyRedisError(s.client.Set(ctx, s.recordKey(rec.Workspace), data, 0).Err())
	})
}

func (s *RedisStore) Delete(ctx context.Context, workspace string) error {
	if err := perrors.ValidateWorkspaceKey(workspace); err != nil {
		return err
	}
	return cache.RetryWithBackoff(ctx, func() error {
		return cache.ClassifyRedisError(s.client.Del(ctx, s.recordKey(workspace)).Err())
	})
}

// List scans every workspace key under the store prefix.
func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, cache.ClassifyRedisError(err)
	}

	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		workspace, ok := s.workspaceFromKey(key)
		if !ok {
			continue
		}
		rec, found, err := s.Get(ctx, workspace)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) recordKey(workspace string) string {
	return s.prefix + workspace
}

func (s *RedisStore) workspaceFromKey(key string) (string, bool) {
	workspace, ok := strings.CutPrefix(key, s.prefix)
	if !ok || perrors.ValidateWorkspaceKey(workspace) != nil {
		return "", false
	}
	return workspace, true
}

var _ Store = (*RedisStore)(nil)
