package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

// Cache defines the interface for campaign config caching. Campaign config
// is read on every widget render and changes rarely, so it is the one hot
// read path worth caching.
type Cache interface {
	GetCampaign(ctx context.Context, id string) (models.Campaign, error)
	SetCampaign(ctx context.Context, campaign models.Campaign, ttl time.Duration) error
	GetCampaignList(ctx context.Context) ([]models.Campaign, error)
	SetCampaignList(ctx context.Context, campaigns []models.Campaign, ttl time.Duration) error

	InvalidateCampaign(ctx context.Context, id string) error
	InvalidateAll(ctx context.Context) error
	GetStats() CacheStats
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	Hits        int64
	Misses      int64
	Errors      int64
	HitRatio    float64
	TotalOps    int64
	LastUpdated time.Time
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	DefaultTTL      time.Duration
	MemoryCacheSize int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	EnableMemory    bool
	EnableRedis     bool
}

// HybridCache layers an in-memory cache over Redis: memory for ultra-fast
// access, Redis for state shared across instances
type HybridCache struct {
	memoryCache *memoryCache
	redisCache  *redisCache
	config      CacheConfig
	stats       CacheStats
	mu          sync.RWMutex
}

// NewHybridCache creates a new hybrid cache
func NewHybridCache(config CacheConfig) (*HybridCache, error) {
	hc := &HybridCache{
		config: config,
		stats: CacheStats{
			LastUpdated: time.Now(),
		},
	}

	if config.EnableMemory {
		hc.memoryCache = newMemoryCache(config.MemoryCacheSize)
	}

	if config.EnableRedis {
		var err error
		hc.redisCache, err = newRedisCache(config)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
		}
	}

	return hc, nil
}

// GetCampaign retrieves a campaign from cache (memory first, then Redis, then miss)
func (hc *HybridCache) GetCampaign(ctx context.Context, id string) (models.Campaign, error) {
	key := campaignKey(id)

	if hc.memoryCache != nil {
		if campaign, found := hc.memoryCache.getCampaign(key); found {
			hc.recordHit()
			return campaign, nil
		}
	}

	if hc.redisCache != nil {
		campaign, err := hc.redisCache.getCampaign(ctx, key)
		if err == nil {
			hc.recordHit()
			// Warm memory cache
			if hc.memoryCache != nil {
				hc.memoryCache.setCampaign(key, campaign, hc.config.DefaultTTL)
			}
			return campaign, nil
		}
	}

	hc.recordMiss()
	return models.Campaign{}, ErrCacheMiss
}

// SetCampaign stores a campaign in both caches
func (hc *HybridCache) SetCampaign(ctx context.Context, campaign models.Campaign, ttl time.Duration) error {
	key := campaignKey(campaign.ID)
	var errs []error

	if hc.memoryCache != nil {
		hc.memoryCache.setCampaign(key, campaign, ttl)
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.setCampaign(ctx, key, campaign, ttl); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		hc.recordError()
		return fmt.Errorf("cache store errors: %v", errs)
	}

	return nil
}

// GetCampaignList retrieves the full campaign list from cache
func (hc *HybridCache) GetCampaignList(ctx context.Context) ([]models.Campaign, error) {
	if hc.memoryCache != nil {
		if campaigns, found := hc.memoryCache.getCampaignList(); found {
			hc.recordHit()
			return campaigns, nil
		}
	}

	if hc.redisCache != nil {
		campaigns, err := hc.redisCache.getCampaignList(ctx)
		if err == nil {
			hc.recordHit()
			if hc.memoryCache != nil {
				hc.memoryCache.setCampaignList(campaigns, hc.config.DefaultTTL)
			}
			return campaigns, nil
		}
	}

	hc.recordMiss()
	return nil, ErrCacheMiss
}

// SetCampaignList stores the full campaign list in both caches
func (hc *HybridCache) SetCampaignList(ctx context.Context, campaigns []models.Campaign, ttl time.Duration) error {
	var errs []error

	if hc.memoryCache != nil {
		hc.memoryCache.setCampaignList(campaigns, ttl)
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.setCampaignList(ctx, campaigns, ttl); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		hc.recordError()
		return fmt.Errorf("cache store errors: %v", errs)
	}

	return nil
}

// InvalidateCampaign drops one campaign and the cached list, in both tiers
func (hc *HybridCache) InvalidateCampaign(ctx context.Context, id string) error {
	key := campaignKey(id)
	var errs []error

	if hc.memoryCache != nil {
		hc.memoryCache.delete(key)
		hc.memoryCache.delete(listKey)
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.delete(ctx, key, listKey); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cache invalidation errors: %v", errs)
	}

	return nil
}

// InvalidateAll clears all caches
func (hc *HybridCache) InvalidateAll(ctx context.Context) error {
	var errs []error

	if hc.memoryCache != nil {
		hc.memoryCache.clear()
	}

	if hc.redisCache != nil {
		if err := hc.redisCache.clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cache invalidation errors: %v", errs)
	}

	return nil
}

// Close stops the memory cleanup goroutine and closes the Redis connection
func (hc *HybridCache) Close() error {
	if hc.memoryCache != nil {
		hc.memoryCache.close()
	}
	if hc.redisCache != nil {
		return hc.redisCache.close()
	}
	return nil
}

// GetStats returns cache statistics
func (hc *HybridCache) GetStats() CacheStats {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	stats := hc.stats
	if stats.TotalOps > 0 {
		stats.HitRatio = float64(stats.Hits) / float64(stats.TotalOps)
	}
	return stats
}

func (hc *HybridCache) recordHit() {
	hc.mu.Lock()
	hc.stats.Hits++
	hc.stats.TotalOps++
	hc.mu.Unlock()
}

func (hc *HybridCache) recordMiss() {
	hc.mu.Lock()
	hc.stats.Misses++
	hc.stats.TotalOps++
	hc.mu.Unlock()
}

func (hc *HybridCache) recordError() {
	hc.mu.Lock()
	hc.stats.Errors++
	hc.mu.Unlock()
}

const listKey = "campaigns:all"

func campaignKey(id string) string {
	return fmt.Sprintf("campaign:%s", id)
}

// Custom errors
var (
	ErrCacheMiss = fmt.Errorf("cache miss")
)
