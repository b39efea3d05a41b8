package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// mockCampaignRepository implements service.CampaignRepository in memory,
// for local runs without a database
type mockCampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[string]models.Campaign
}

// NewMockCampaignRepository creates a campaign repository seeded with
// sample campaigns
func NewMockCampaignRepository() service.CampaignRepository {
	now := time.Now()
	duration := 1440
	launch := now.Add(72 * time.Hour)

	campaigns := map[string]models.Campaign{
		"flash-sale": {
			ID:              "flash-sale",
			Title:           "Flash sale ends in",
			Type:            models.TypeEvergreen,
			DurationMinutes: &duration,
			TargetURLs:      []string{"/offers/*"},
			ExpirationAction: models.ExpirationAction{
				Type:    "text",
				Content: "Offer expired",
			},
			Styles: models.Styles{
				Background: "#1e293b",
				Text:       "#f8fafc",
				Button:     "#f59e0b",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		"product-launch": {
			ID:            "product-launch",
			Title:         "Launching in",
			Type:          models.TypeFixed,
			FixedDeadline: &launch,
			ExpirationAction: models.ExpirationAction{
				Type:    "text",
				Content: "We are live!",
			},
			Styles: models.Styles{
				Background: "#f3f4f6",
				Text:       "#374151",
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	return &mockCampaignRepository{campaigns: campaigns}
}

func (r *mockCampaignRepository) GetByID(ctx context.Context, id string) (models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	campaign, ok := r.campaigns[id]
	if !ok {
		return models.Campaign{}, service.ErrNotFound
	}
	return campaign, nil
}

func (r *mockCampaignRepository) List(ctx context.Context) ([]models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	campaigns := make([]models.Campaign, 0, len(r.campaigns))
	for _, campaign := range r.campaigns {
		campaigns = append(campaigns, campaign)
	}
	return campaigns, nil
}

func (r *mockCampaignRepository) Create(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now
	r.campaigns[campaign.ID] = campaign
	return campaign, nil
}

func (r *mockCampaignRepository) Update(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.campaigns[campaign.ID]
	if !ok {
		return models.Campaign{}, service.ErrNotFound
	}
	campaign.CreatedAt = existing.CreatedAt
	campaign.UpdatedAt = time.Now()
	r.campaigns[campaign.ID] = campaign
	return campaign, nil
}

// memoryVisitorRepository implements service.VisitorRepository in memory.
// The campaign repository is consulted so the combined lookup can nest the
// campaign the same way the postgres join does.
type memoryVisitorRepository struct {
	mu        sync.RWMutex
	visitors  map[visitorKey]models.Visitor
	sessions  []models.VisitorSession
	campaigns service.CampaignRepository
}

type visitorKey struct {
	visitorID  string
	campaignID string
}

// NewMemoryVisitorRepository creates an empty in-memory visitor repository
func NewMemoryVisitorRepository(campaigns service.CampaignRepository) service.VisitorRepository {
	return &memoryVisitorRepository{
		visitors:  make(map[visitorKey]models.Visitor),
		campaigns: campaigns,
	}
}

func (r *memoryVisitorRepository) GetByKey(ctx context.Context, visitorID, campaignID string) (models.Visitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visitor, ok := r.visitors[visitorKey{visitorID, campaignID}]
	if !ok {
		return models.Visitor{}, service.ErrNotFound
	}
	return visitor, nil
}

func (r *memoryVisitorRepository) Upsert(ctx context.Context, visitor models.Visitor) (models.Visitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := visitorKey{visitor.VisitorID, visitor.CampaignID}
	if existing, ok := r.visitors[key]; ok {
		visitor.CreatedAt = existing.CreatedAt
	}
	r.visitors[key] = visitor
	return visitor, nil
}

func (r *memoryVisitorRepository) TouchLastSeen(ctx context.Context, visitorID, campaignID string, seen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := visitorKey{visitorID, campaignID}
	if visitor, ok := r.visitors[key]; ok {
		visitor.LastSeen = seen
		r.visitors[key] = visitor
	}
	return nil
}

func (r *memoryVisitorRepository) LatestByVisitorID(ctx context.Context, visitorID string) (models.VisitorWithCampaign, error) {
	r.mu.RLock()
	var latest *models.Visitor
	for key, visitor := range r.visitors {
		if key.visitorID != visitorID {
			continue
		}
		v := visitor
		if latest == nil || v.LastSeen.After(latest.LastSeen) {
			latest = &v
		}
	}
	r.mu.RUnlock()

	if latest == nil {
		return models.VisitorWithCampaign{}, service.ErrNotFound
	}

	result := models.VisitorWithCampaign{Visitor: *latest}
	if campaign, err := r.campaigns.GetByID(ctx, latest.CampaignID); err == nil {
		result.Campaign = &models.CampaignSummary{
			ID:         campaign.ID,
			Title:      campaign.Title,
			Type:       campaign.Type,
			Styles:     campaign.Styles,
			TargetURLs: campaign.TargetURLs,
		}
	}
	return result, nil
}

func (r *memoryVisitorRepository) CreateSession(ctx context.Context, session models.VisitorSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append(r.sessions, session)
	return nil
}
