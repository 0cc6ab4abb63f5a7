package strategy

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mealplanner/internal/retrieval"
)

// CandidateCache stores retrieved candidate lists keyed by search shape, so
// repeated slots within and across plans skip the recipe API.
type CandidateCache interface {
	Get(ctx context.Context, key string) ([]retrieval.Candidate, bool)
	Set(ctx context.Context, key string, items []retrieval.Candidate)
}

// candidateKey builds a stable cache key from the fields that change the
// search result. Dietary restrictions are sorted so order does not split
// entries.
func candidateKey(mealType string, dietary []string, prepTimeMax int) string {
	sorted := append([]string(nil), dietary...)
	sort.Strings(sorted)
	return mealType + "|" + strings.Join(sorted, ",") + "|" + strconv.Itoa(prepTimeMax)
}

type memoryCache struct {
	cache *ttlcache.Cache[string, []retrieval.Candidate]
}

// NewMemoryCache returns an in-process candidate cache with the given TTL.
func NewMemoryCache(ttl time.Duration) CandidateCache {
	c := ttlcache.New[string, []retrieval.Candidate](
		ttlcache.WithTTL[string, []retrieval.Candidate](ttl),
	)
	go c.Start()
	return &memoryCache{cache: c}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]retrieval.Candidate, bool) {
	item := m.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (m *memoryCache) Set(_ context.Context, key string, items []retrieval.Candidate) {
	m.cache.Set(key, items, ttlcache.DefaultTTL)
}

type redisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache returns a candidate cache backed by Redis, for deployments
// that run more than one instance. Redis failures are logged and treated as
// cache misses.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) CandidateCache {
	return &redisCache{client: client, ttl: ttl, logger: logger}
}

const redisKeyPrefix = "mealplanner:candidates:"

func (r *redisCache) Get(ctx context.Context, key string) ([]retrieval.Candidate, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("candidate cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []retrieval.Candidate
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.Warn("candidate cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}

func (r *redisCache) Set(ctx context.Context, key string, items []retrieval.Candidate) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("candidate cache write failed", zap.Error(err))
	}
}
