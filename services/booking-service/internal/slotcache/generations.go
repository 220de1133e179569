package slotcache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Generations is a monotonic per-designer counter. Bumping it retires every cached
// result of that designer without enumerating them.
type Generations interface {
	Current(ctx context.Context, designerID string) (uint64, error)
	Bump(ctx context.Context, designerID string) (uint64, error)
}

type MemoryGenerations struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewMemoryGenerations() *MemoryGenerations {
	return &MemoryGenerations{gens: make(map[string]uint64)}
}

func (g *MemoryGenerations) Current(_ context.Context, designerID string) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[designerID], nil
}

func (g *MemoryGenerations) Bump(_ context.Context, designerID string) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[designerID]++
	return g.gens[designerID], nil
}

// RedisGenerations shares counters between replicas so a mutation seen by one
// instance retires the results cached by all of them.
type RedisGenerations struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisGenerations(rdb *redis.Client, prefix string) *RedisGenerations {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "nailbook:slots:gen"
	}
	return &RedisGenerations{rdb: rdb, prefix: prefix}
}

func (g *RedisGenerations) key(designerID string) string {
	return g.prefix + ":" + designerID
}

func (g *RedisGenerations) Current(ctx context.Context, designerID string) (uint64, error) {
	n, err := g.rdb.Get(ctx, g.key(designerID)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("slotcache: get generation: %w", err)
	}
	return n, nil
}

func (g *RedisGenerations) Bump(ctx context.Context, designerID string) (uint64, error) {
	n, err := g.rdb.Incr(ctx, g.key(designerID)).Uint64()
	if err != nil {
		return 0, fmt.Errorf("slotcache: bump generation: %w", err)
	}
	return n, nil
}
