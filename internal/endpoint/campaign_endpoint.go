package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// CampaignEndpoints holds the admin campaign CRUD endpoints
type CampaignEndpoints struct {
	CreateCampaignEndpoint endpoint.Endpoint
	GetCampaignEndpoint    endpoint.Endpoint
	ListCampaignsEndpoint  endpoint.Endpoint
	UpdateCampaignEndpoint endpoint.Endpoint
}

// MakeCampaignEndpoints creates endpoints for the campaign admin service
func MakeCampaignEndpoints(s service.CampaignAdminService) CampaignEndpoints {
	return CampaignEndpoints{
		CreateCampaignEndpoint: makeCreateCampaignEndpoint(s),
		GetCampaignEndpoint:    makeGetCampaignEndpoint(s),
		ListCampaignsEndpoint:  makeListCampaignsEndpoint(s),
		UpdateCampaignEndpoint: makeUpdateCampaignEndpoint(s),
	}
}

// CreateCampaignRequest represents the campaign create request
type CreateCampaignRequest struct {
	Payload models.UpsertCampaignRequest
}

// CampaignResponse represents a single-campaign response
type CampaignResponse struct {
	Campaign models.Campaign `json:"campaign"`
	Err      error           `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r CampaignResponse) Failed() error { return r.Err }

func makeCreateCampaignEndpoint(s service.CampaignAdminService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(CreateCampaignRequest)
		campaign, err := s.Create(ctx, req.Payload)
		return CampaignResponse{Campaign: campaign, Err: err}, nil
	}
}

// GetCampaignRequest represents the campaign get request
type GetCampaignRequest struct {
	ID string
}

func makeGetCampaignEndpoint(s service.CampaignAdminService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(GetCampaignRequest)
		campaign, err := s.Get(ctx, req.ID)
		return CampaignResponse{Campaign: campaign, Err: err}, nil
	}
}

// ListCampaignsRequest represents the campaign list request
type ListCampaignsRequest struct{}

// ListCampaignsResponse represents the campaign list response
type ListCampaignsResponse struct {
	Campaigns []models.Campaign `json:"campaigns"`
	Err       error             `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r ListCampaignsResponse) Failed() error { return r.Err }

func makeListCampaignsEndpoint(s service.CampaignAdminService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		campaigns, err := s.List(ctx)
		return ListCampaignsResponse{Campaigns: campaigns, Err: err}, nil
	}
}

// UpdateCampaignRequest represents the campaign update request
type UpdateCampaignRequest struct {
	ID      string
	Payload models.UpsertCampaignRequest
}

func makeUpdateCampaignEndpoint(s service.CampaignAdminService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(UpdateCampaignRequest)
		campaign, err := s.Update(ctx, req.ID, req.Payload)
		return CampaignResponse{Campaign: campaign, Err: err}, nil
	}
}
