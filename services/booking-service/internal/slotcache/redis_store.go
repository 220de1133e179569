package slotcache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

// RedisStore keeps resolved days as JSON lists of HH:MM labels. Redis expires them.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "nailbook:slots:v"
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(k Key) string {
	return s.prefix + ":" + k.String()
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]model.TimeOfDay, bool, error) {
	data, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("slotcache: get: %w", err)
	}
	var slots []model.TimeOfDay
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false, fmt.Errorf("slotcache: decode %s: %w", key, err)
	}
	return slots, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, slots []model.TimeOfDay) error {
	if slots == nil {
		slots = []model.TimeOfDay{}
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("slotcache: encode: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("slotcache: set: %w", err)
	}
	return nil
}
