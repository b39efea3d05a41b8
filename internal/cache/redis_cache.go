package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

const redisKeyPrefix = "countdown:"

// redisCache implements Redis-based caching
type redisCache struct {
	client *redis.Client
	config CacheConfig
}

// newRedisCache creates a new Redis cache client
func newRedisCache(config CacheConfig) (*redisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{
		client: client,
		config: config,
	}, nil
}

// getCampaign retrieves one campaign from Redis
func (rc *redisCache) getCampaign(ctx context.Context, key string) (models.Campaign, error) {
	data, err := rc.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return models.Campaign{}, ErrCacheMiss
		}
		return models.Campaign{}, fmt.Errorf("Redis get error: %w", err)
	}

	var campaign models.Campaign
	if err := json.Unmarshal([]byte(data), &campaign); err != nil {
		return models.Campaign{}, fmt.Errorf("JSON unmarshal error: %w", err)
	}

	return campaign, nil
}

// setCampaign stores one campaign in Redis
func (rc *redisCache) setCampaign(ctx context.Context, key string, campaign models.Campaign, ttl time.Duration) error {
	data, err := json.Marshal(campaign)
	if err != nil {
		return fmt.Errorf("JSON marshal error: %w", err)
	}

	if err := rc.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("Redis set error: %w", err)
	}

	return nil
}

// getCampaignList retrieves the campaign list from Redis
func (rc *redisCache) getCampaignList(ctx context.Context) ([]models.Campaign, error) {
	data, err := rc.client.Get(ctx, redisKeyPrefix+listKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("Redis get error: %w", err)
	}

	var campaigns []models.Campaign
	if err := json.Unmarshal([]byte(data), &campaigns); err != nil {
		return nil, fmt.Errorf("JSON unmarshal error: %w", err)
	}

	return campaigns, nil
}

// setCampaignList stores the campaign list in Redis
func (rc *redisCache) setCampaignList(ctx context.Context, campaigns []models.Campaign, ttl time.Duration) error {
	data, err := json.Marshal(campaigns)
	if err != nil {
		return fmt.Errorf("JSON marshal error: %w", err)
	}

	if err := rc.client.Set(ctx, redisKeyPrefix+listKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("Redis set error: %w", err)
	}

	return nil
}

// delete removes the given keys from Redis
func (rc *redisCache) delete(ctx context.Context, keys ...string) error {
	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = redisKeyPrefix + key
	}

	if err := rc.client.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("Redis delete error: %w", err)
	}

	return nil
}

// clear removes all countdown cache keys from Redis
func (rc *redisCache) clear(ctx context.Context) error {
	keys, err := rc.client.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("Redis keys error: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("Redis delete error: %w", err)
	}

	return nil
}

// close closes the Redis connection
func (rc *redisCache) close() error {
	return rc.client.Close()
}

// healthCheck checks Redis connection health
func (rc *redisCache) healthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}
