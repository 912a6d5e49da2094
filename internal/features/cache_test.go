package features

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/models"
)

func testCache() *Cache {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewCache(nil, config.CacheConfig{
		TeamFormTTLSeconds:   60,
		HeadToHeadTTLSeconds: 60,
		MarketTTLSeconds:     60,
	}, log)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "features:team_form:soccer_epl:arsenal", FormKey("soccer_epl", "Arsenal"))
	assert.Equal(t, "features:team_form:soccer_epl:west_ham_united", FormKey("soccer_epl", " West Ham United "))
	assert.Equal(t, "features:h2h:soccer_epl:arsenal:chelsea", HeadToHeadKey("soccer_epl", "Arsenal", "Chelsea"))
	assert.Equal(t, "features:stats:soccer_epl:arsenal", StatsKey("soccer_epl", "Arsenal"))
}

func TestCacheRoundTripWithoutRedis(t *testing.T) {
	cache := testCache()
	ctx := context.Background()

	key := FormKey("soccer_epl", "Arsenal")
	_, found := cache.GetForm(ctx, key)
	assert.False(t, found)

	form := models.TeamForm{WinRate5: 0.8, CurrentStreak: 3, IsRealData: true, Tier: models.TierLive}
	cache.SetForm(ctx, key, form)

	cached, found := cache.GetForm(ctx, key)
	require.True(t, found)
	assert.Equal(t, form, cached)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.InDelta(t, 0.5, cache.HitRatio(), 1e-9)
}

func TestCacheFlush(t *testing.T) {
	cache := testCache()
	ctx := context.Background()

	key := StatsKey("soccer_epl", "Arsenal")
	cache.SetStats(ctx, key, models.DetailedStats{Possession: 60, IsRealData: true})

	cache.Flush()
	_, found := cache.GetStats(ctx, key)
	assert.False(t, found)
}

func TestNewRedisClientDisabled(t *testing.T) {
	client := NewRedisClient(config.RedisConfig{Enabled: false, Address: "localhost:6379"})
	assert.Nil(t, client)

	err := PingRedis(context.Background(), nil)
	assert.Error(t, err)
}
