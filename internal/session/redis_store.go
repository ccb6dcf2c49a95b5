package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/yanizio/playeradmin/internal/panel"
)

const redisKeyPrefix = "playeradmin:session:"

// RedisStore keeps one JSON value per session.  Every save renews the TTL,
// so a session expires ttl after its last change.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps rdb.  ttl ≤ 0 stores keys without expiry.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, id string) (panel.PaginationState, bool, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return panel.PaginationState{}, false, nil
	}
	if err != nil {
		return panel.PaginationState{}, false, fmt.Errorf("load session %s: %w", id, err)
	}

	var st panel.PaginationState
	if err := json.Unmarshal(raw, &st); err != nil {
		return panel.PaginationState{}, false, fmt.Errorf("decode session %s: %w", id, err)
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, st panel.PaginationState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
