package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// CachedCampaignRepository wraps a campaign repository with cache-aside
// reads. Writes pass through and invalidate, so a campaign edit is visible
// on the next widget load.
type CachedCampaignRepository struct {
	repo  service.CampaignRepository
	cache Cache
	ttl   time.Duration
}

// NewCachedCampaignRepository creates a new cached campaign repository
func NewCachedCampaignRepository(repo service.CampaignRepository, cache Cache, ttl time.Duration) service.CampaignRepository {
	return &CachedCampaignRepository{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// GetByID retrieves a campaign from cache first, then the database
func (cr *CachedCampaignRepository) GetByID(ctx context.Context, id string) (models.Campaign, error) {
	campaign, err := cr.cache.GetCampaign(ctx, id)
	if err == nil {
		return campaign, nil
	}

	campaign, err = cr.repo.GetByID(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}

	// Store in cache for next time (async to not block the response)
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := cr.cache.SetCampaign(cacheCtx, campaign, cr.ttl); err != nil {
			fmt.Printf("Failed to cache campaign %s: %v\n", campaign.ID, err)
		}
	}()

	return campaign, nil
}

// List retrieves the campaign list from cache first, then the database
func (cr *CachedCampaignRepository) List(ctx context.Context) ([]models.Campaign, error) {
	campaigns, err := cr.cache.GetCampaignList(ctx)
	if err == nil {
		return campaigns, nil
	}

	campaigns, err = cr.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := cr.cache.SetCampaignList(cacheCtx, campaigns, cr.ttl); err != nil {
			fmt.Printf("Failed to cache campaign list: %v\n", err)
		}
	}()

	return campaigns, nil
}

// Create passes through and invalidates the cached list
func (cr *CachedCampaignRepository) Create(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	stored, err := cr.repo.Create(ctx, campaign)
	if err != nil {
		return models.Campaign{}, err
	}

	if err := cr.cache.InvalidateCampaign(ctx, stored.ID); err != nil {
		fmt.Printf("Failed to invalidate cache for campaign %s: %v\n", stored.ID, err)
	}

	return stored, nil
}

// Update passes through and invalidates the stale entry. Deadlines already
// assigned from the old config keep their stored values.
func (cr *CachedCampaignRepository) Update(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	stored, err := cr.repo.Update(ctx, campaign)
	if err != nil {
		return models.Campaign{}, err
	}

	if err := cr.cache.InvalidateCampaign(ctx, stored.ID); err != nil {
		fmt.Printf("Failed to invalidate cache for campaign %s: %v\n", stored.ID, err)
	}

	return stored, nil
}

// InvalidateCache clears all cached data
func (cr *CachedCampaignRepository) InvalidateCache(ctx context.Context) error {
	return cr.cache.InvalidateAll(ctx)
}

// GetCacheStats returns cache performance statistics
func (cr *CachedCampaignRepository) GetCacheStats() CacheStats {
	return cr.cache.GetStats()
}
