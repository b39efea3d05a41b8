package service

import (
	"context"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

// CampaignAdminService defines the admin-facing campaign CRUD operations
type CampaignAdminService interface {
	Create(ctx context.Context, req models.UpsertCampaignRequest) (models.Campaign, error)
	Get(ctx context.Context, id string) (models.Campaign, error)
	List(ctx context.Context) ([]models.Campaign, error)
	Update(ctx context.Context, id string, req models.UpsertCampaignRequest) (models.Campaign, error)
}

// CampaignService manages campaign configuration. Updates never rewrite
// deadlines already assigned from the old config: visitors keep what they
// were given.
type CampaignService struct {
	repository CampaignRepository
}

// NewCampaignService creates a new campaign service
func NewCampaignService(repo CampaignRepository) *CampaignService {
	return &CampaignService{repository: repo}
}

// Create validates and stores a new campaign
func (s *CampaignService) Create(ctx context.Context, req models.UpsertCampaignRequest) (models.Campaign, error) {
	campaign := req.ToCampaign()
	if err := campaign.Validate(); err != nil {
		return models.Campaign{}, NewValidationError(err)
	}
	return s.repository.Create(ctx, campaign)
}

// Get returns a campaign by id
func (s *CampaignService) Get(ctx context.Context, id string) (models.Campaign, error) {
	return s.repository.GetByID(ctx, id)
}

// List returns all campaigns
func (s *CampaignService) List(ctx context.Context) ([]models.Campaign, error) {
	return s.repository.List(ctx)
}

// Update validates and stores changes to an existing campaign
func (s *CampaignService) Update(ctx context.Context, id string, req models.UpsertCampaignRequest) (models.Campaign, error) {
	campaign := req.ToCampaign()
	campaign.ID = id
	if err := campaign.Validate(); err != nil {
		return models.Campaign{}, NewValidationError(err)
	}
	return s.repository.Update(ctx, campaign)
}
