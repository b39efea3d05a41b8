package endpoint

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// VisitorEndpoints holds all endpoints consumed by the embedded widget
type VisitorEndpoints struct {
	GenerateVisitorEndpoint endpoint.Endpoint
	LookupEndpoint          endpoint.Endpoint
	SetDeadlineEndpoint     endpoint.Endpoint
	StorageGetEndpoint      endpoint.Endpoint
}

// MakeVisitorEndpoints creates endpoints for the visitor deadline service
func MakeVisitorEndpoints(s service.VisitorDeadlineService) VisitorEndpoints {
	return VisitorEndpoints{
		GenerateVisitorEndpoint: makeGenerateVisitorEndpoint(s),
		LookupEndpoint:          makeLookupEndpoint(s),
		SetDeadlineEndpoint:     makeSetDeadlineEndpoint(s),
		StorageGetEndpoint:      makeStorageGetEndpoint(s),
	}
}

// GenerateVisitorRequest represents the request for minting a visitor id
type GenerateVisitorRequest struct {
	GenerateVisitorRequest models.GenerateVisitorRequest
}

// GenerateVisitorResponse represents the response for minting a visitor id
type GenerateVisitorResponse struct {
	Visitor models.GenerateVisitorResponse `json:"visitor"`
	Err     error                          `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r GenerateVisitorResponse) Failed() error { return r.Err }

func makeGenerateVisitorEndpoint(s service.VisitorDeadlineService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(GenerateVisitorRequest)
		visitor, err := s.GenerateVisitor(ctx, req.GenerateVisitorRequest)
		return GenerateVisitorResponse{
			Visitor: visitor,
			Err:     err,
		}, nil
	}
}

// LookupRequest represents the combined visitor lookup request
type LookupRequest struct {
	VisitorID string
}

// LookupResponse represents the combined visitor lookup response
type LookupResponse struct {
	Visitor *models.VisitorWithCampaign `json:"visitor"`
	Err     error                       `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r LookupResponse) Failed() error { return r.Err }

func makeLookupEndpoint(s service.VisitorDeadlineService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(LookupRequest)
		visitor, err := s.Lookup(ctx, req.VisitorID)
		return LookupResponse{
			Visitor: visitor,
			Err:     err,
		}, nil
	}
}

// SetDeadlineRequest represents the visitor-storage-set request
type SetDeadlineRequest struct {
	SetDeadlineRequest models.SetDeadlineRequest
}

// SetDeadlineResponse represents the visitor-storage-set response
type SetDeadlineResponse struct {
	Assignment service.Assignment `json:"-"`
	Err        error              `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r SetDeadlineResponse) Failed() error { return r.Err }

func makeSetDeadlineEndpoint(s service.VisitorDeadlineService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(SetDeadlineRequest)
		assignment, err := s.Assign(ctx, req.SetDeadlineRequest.VisitorID, req.SetDeadlineRequest.CampaignID)
		return SetDeadlineResponse{
			Assignment: assignment,
			Err:        err,
		}, nil
	}
}

// StorageGetRequest represents the visitor-storage-get request
type StorageGetRequest struct {
	VisitorID  string
	CampaignID string
}

// StorageGetResponse represents the visitor-storage-get response
type StorageGetResponse struct {
	Storage models.StorageGetResponse `json:"storage"`
	Err     error                     `json:"error,omitempty"`
}

// Failed implements the endpoint.Failer interface
func (r StorageGetResponse) Failed() error { return r.Err }

func makeStorageGetEndpoint(s service.VisitorDeadlineService) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(StorageGetRequest)
		storage, err := s.Storage(ctx, req.VisitorID, req.CampaignID)
		return StorageGetResponse{
			Storage: storage,
			Err:     err,
		}, nil
	}
}

// Assign is a helper method to call the set-deadline endpoint directly
func (e VisitorEndpoints) Assign(ctx context.Context, visitorID, campaignID string) (service.Assignment, error) {
	response, err := e.SetDeadlineEndpoint(ctx, SetDeadlineRequest{
		SetDeadlineRequest: models.SetDeadlineRequest{VisitorID: visitorID, CampaignID: campaignID},
	})
	if err != nil {
		return service.Assignment{}, err
	}
	resp := response.(SetDeadlineResponse)
	return resp.Assignment, resp.Err
}
