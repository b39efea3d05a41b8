package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	reqcontext "github.com/dealinefunnel/countdown-service/internal/context"
	"github.com/dealinefunnel/countdown-service/internal/models"
)

// CampaignRepository is the campaign store interface
type CampaignRepository interface {
	GetByID(ctx context.Context, id string) (models.Campaign, error)
	List(ctx context.Context) ([]models.Campaign, error)
	Create(ctx context.Context, campaign models.Campaign) (models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) (models.Campaign, error)
}

// VisitorRepository is the visitor store interface. Upsert must be keyed on
// (visitor_id, campaign_id) so racing first visits collapse to one row.
type VisitorRepository interface {
	GetByKey(ctx context.Context, visitorID, campaignID string) (models.Visitor, error)
	Upsert(ctx context.Context, visitor models.Visitor) (models.Visitor, error)
	TouchLastSeen(ctx context.Context, visitorID, campaignID string, seen time.Time) error
	LatestByVisitorID(ctx context.Context, visitorID string) (models.VisitorWithCampaign, error)
	CreateSession(ctx context.Context, session models.VisitorSession) error
}

// Assignment is the result of a deadline assignment
type Assignment struct {
	Deadline     time.Time
	IsNew        bool
	CampaignType models.CampaignType
}

// VisitorDeadlineService defines the widget-facing operations
type VisitorDeadlineService interface {
	GenerateVisitor(ctx context.Context, req models.GenerateVisitorRequest) (models.GenerateVisitorResponse, error)
	Lookup(ctx context.Context, visitorID string) (*models.VisitorWithCampaign, error)
	Assign(ctx context.Context, visitorID, campaignID string) (Assignment, error)
	Storage(ctx context.Context, visitorID, campaignID string) (models.StorageGetResponse, error)
}

// DeadlineService implements the idempotent visitor/deadline assignment
// protocol on top of the campaign and visitor stores
type DeadlineService struct {
	campaigns CampaignRepository
	visitors  VisitorRepository
	now       func() time.Time
}

// NewDeadlineService creates a new deadline service
func NewDeadlineService(campaigns CampaignRepository, visitors VisitorRepository) *DeadlineService {
	return &DeadlineService{
		campaigns: campaigns,
		visitors:  visitors,
		now:       time.Now,
	}
}

// NewDeadlineServiceWithClock creates a deadline service with an injected
// clock, used by tests to pin "now"
func NewDeadlineServiceWithClock(campaigns CampaignRepository, visitors VisitorRepository, now func() time.Time) *DeadlineService {
	return &DeadlineService{
		campaigns: campaigns,
		visitors:  visitors,
		now:       now,
	}
}

// GenerateVisitor mints a fresh pseudo-anonymous visitor id and records the
// session for audit
func (s *DeadlineService) GenerateVisitor(ctx context.Context, req models.GenerateVisitorRequest) (models.GenerateVisitorResponse, error) {
	if err := req.Validate(); err != nil {
		return models.GenerateVisitorResponse{}, NewValidationError(err)
	}

	visitorID := uuid.New().String()
	createdAt := s.now()

	session := models.VisitorSession{
		VisitorID:   visitorID,
		IPAddress:   reqcontext.GetRemoteAddr(ctx),
		UserAgent:   req.UserAgent,
		Fingerprint: req.Fingerprint,
		CreatedAt:   createdAt,
	}
	if err := s.visitors.CreateSession(ctx, session); err != nil {
		return models.GenerateVisitorResponse{}, err
	}

	return models.GenerateVisitorResponse{
		VisitorID: visitorID,
		CreatedAt: createdAt,
	}, nil
}

// Lookup returns the visitor's most recent deadline together with its
// campaign, or nil when the visitor has never been assigned one. A nil
// visitor is the widget's cue to treat this as a first visit.
func (s *DeadlineService) Lookup(ctx context.Context, visitorID string) (*models.VisitorWithCampaign, error) {
	req := models.LookupRequest{VisitorID: visitorID}
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	visitor, err := s.visitors.LatestByVisitorID(ctx, visitorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.touchLastSeen(visitor.VisitorID, visitor.CampaignID)

	return &visitor, nil
}

// Assign returns the visitor's deadline for a campaign, creating one on
// first contact. Repeat calls for the same key return the stored deadline
// unchanged; only last_seen moves, and that update is best-effort.
func (s *DeadlineService) Assign(ctx context.Context, visitorID, campaignID string) (Assignment, error) {
	req := models.SetDeadlineRequest{VisitorID: visitorID, CampaignID: campaignID}
	if err := req.Validate(); err != nil {
		return Assignment{}, NewValidationError(err)
	}

	existing, err := s.visitors.GetByKey(ctx, visitorID, campaignID)
	if err == nil {
		s.touchLastSeen(visitorID, campaignID)
		return Assignment{Deadline: existing.Deadline, IsNew: false}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Assignment{}, err
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return Assignment{}, err
	}

	now := s.now()
	deadline, err := campaign.DeadlineFor(now)
	if err != nil {
		return Assignment{}, err
	}

	// Two tabs racing through their first visit both land here; the upsert
	// keyed on (visitor_id, campaign_id) keeps exactly one row, last write
	// wins, and we hand back whatever the store kept.
	stored, err := s.visitors.Upsert(ctx, models.Visitor{
		VisitorID:  visitorID,
		CampaignID: campaignID,
		Deadline:   deadline,
		CreatedAt:  now,
		LastSeen:   now,
	})
	if err != nil {
		return Assignment{}, err
	}

	return Assignment{Deadline: stored.Deadline, IsNew: true, CampaignType: campaign.Type}, nil
}

// Storage returns the visitor's deadline plus the widget-facing campaign
// config for rendering
func (s *DeadlineService) Storage(ctx context.Context, visitorID, campaignID string) (models.StorageGetResponse, error) {
	req := models.StorageGetRequest{VisitorID: visitorID, CampaignID: campaignID}
	if err := req.Validate(); err != nil {
		return models.StorageGetResponse{}, NewValidationError(err)
	}

	visitor, err := s.visitors.GetByKey(ctx, visitorID, campaignID)
	if err != nil {
		return models.StorageGetResponse{}, err
	}

	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return models.StorageGetResponse{}, err
	}

	return models.StorageGetResponse{
		Deadline:       visitor.Deadline,
		CampaignConfig: campaign.Config(),
	}, nil
}

// touchLastSeen bumps last_seen in the background. Intentionally lossy: a
// failed touch never fails the visit that triggered it.
func (s *DeadlineService) touchLastSeen(visitorID, campaignID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.visitors.TouchLastSeen(ctx, visitorID, campaignID, s.now())
	}()
}
