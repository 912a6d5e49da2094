package features

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/metrics"
	"github.com/yourusername/oddsedge/internal/models"
)

// Cache stores feature lookups in Redis with a small in-process front cache
// for hot keys. Cache failures degrade silently: a miss is always safe because
// the provider tiers fall back to defaults.
type Cache struct {
	redis  *redis.Client
	local  *gocache.Cache
	ttls   config.CacheConfig
	logger *logrus.Entry

	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewCache creates a feature cache. The Redis client may be nil, in which
// case only the in-process cache is used.
func NewCache(redisClient *redis.Client, ttls config.CacheConfig, logger *logrus.Logger) *Cache {
	return &Cache{
		redis:  redisClient,
		local:  gocache.New(5*time.Minute, 10*time.Minute),
		ttls:   ttls,
		logger: logger.WithField("component", "feature_cache"),
	}
}

// FormKey builds the cache key for a team's form
func FormKey(sportKey, team string) string {
	return "features:team_form:" + sportKey + ":" + normalizeTeam(team)
}

// HeadToHeadKey builds the cache key for a head-to-head record
func HeadToHeadKey(sportKey, home, away string) string {
	return "features:h2h:" + sportKey + ":" + normalizeTeam(home) + ":" + normalizeTeam(away)
}

// StatsKey builds the cache key for a team's detailed statistics
func StatsKey(sportKey, team string) string {
	return "features:stats:" + sportKey + ":" + normalizeTeam(team)
}

func normalizeTeam(team string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(team)), " ", "_")
}

// GetForm retrieves a cached team form
func (c *Cache) GetForm(ctx context.Context, key string) (models.TeamForm, bool) {
	var form models.TeamForm
	ok := c.get(ctx, key, &form)
	return form, ok
}

// SetForm caches a team form with the configured TTL
func (c *Cache) SetForm(ctx context.Context, key string, form models.TeamForm) {
	c.set(ctx, key, form, c.ttls.TeamFormTTL())
}

// GetHeadToHead retrieves a cached head-to-head record
func (c *Cache) GetHeadToHead(ctx context.Context, key string) (models.HeadToHead, bool) {
	var h2h models.HeadToHead
	ok := c.get(ctx, key, &h2h)
	return h2h, ok
}

// SetHeadToHead caches a head-to-head record with the configured TTL
func (c *Cache) SetHeadToHead(ctx context.Context, key string, h2h models.HeadToHead) {
	c.set(ctx, key, h2h, c.ttls.HeadToHeadTTL())
}

// GetStats retrieves cached team statistics
func (c *Cache) GetStats(ctx context.Context, key string) (models.DetailedStats, bool) {
	var stats models.DetailedStats
	ok := c.get(ctx, key, &stats)
	return stats, ok
}

// SetStats caches team statistics. Detailed stats share the team form TTL.
func (c *Cache) SetStats(ctx context.Context, key string, stats models.DetailedStats) {
	c.set(ctx, key, stats, c.ttls.TeamFormTTL())
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if raw, found := c.local.Get(key); found {
		if data, ok := raw.([]byte); ok {
			if err := json.Unmarshal(data, dest); err == nil {
				c.recordHit()
				return true
			}
		}
	}

	if c.redis != nil {
		data, err := c.redis.Get(ctx, key).Bytes()
		if err == nil {
			if err := json.Unmarshal(data, dest); err == nil {
				c.local.Set(key, data, gocache.DefaultExpiration)
				c.recordHit()
				return true
			}
		} else if err != redis.Nil {
			c.logger.WithField("key", key).WithError(err).Debug("Redis read failed")
		}
	}

	c.recordMiss()
	return false
}

func (c *Cache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithField("key", key).WithError(err).Warn("Failed to encode cache value")
		return
	}

	c.local.Set(key, data, ttl)

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
			c.logger.WithField("key", key).WithError(err).Debug("Redis write failed")
		}
	}
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.publishRatio()
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.publishRatio()
	c.mu.Unlock()
}

// publishRatio must be called with the mutex held
func (c *Cache) publishRatio() {
	total := c.hits + c.misses
	if total > 0 {
		metrics.FeatureCacheHitRatio.Set(float64(c.hits) / float64(total))
	}
}

// Stats returns the cache hit and miss counts since startup
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// HitRatio returns the fraction of lookups served from cache
func (c *Cache) HitRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// Flush clears the in-process cache, mainly for tests
func (c *Cache) Flush() {
	c.local.Flush()
}

// NewRedisClient creates a Redis client from configuration, or nil when the
// cache is disabled
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// PingRedis verifies Redis connectivity
func PingRedis(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("redis client is not configured")
	}
	return client.Ping(ctx).Err()
}
