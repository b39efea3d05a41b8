package repository

import (
	"context"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/metrics"
	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// InstrumentedCampaignRepository wraps a campaign repository with metrics collection
type InstrumentedCampaignRepository struct {
	next    service.CampaignRepository
	metrics *metrics.Metrics
}

// NewInstrumentedCampaignRepository creates a new instrumented campaign repository
func NewInstrumentedCampaignRepository(repo service.CampaignRepository, m *metrics.Metrics) service.CampaignRepository {
	return &InstrumentedCampaignRepository{next: repo, metrics: m}
}

func (r *InstrumentedCampaignRepository) record(operation string, err error) {
	r.metrics.RecordDatabaseQuery(operation, "campaigns")
	if err != nil && err != service.ErrNotFound {
		r.metrics.RecordDatabaseError(operation, errorType(err))
	}
}

func (r *InstrumentedCampaignRepository) GetByID(ctx context.Context, id string) (campaign models.Campaign, err error) {
	defer func() { r.record("select", err) }()
	campaign, err = r.next.GetByID(ctx, id)
	return
}

func (r *InstrumentedCampaignRepository) List(ctx context.Context) (campaigns []models.Campaign, err error) {
	defer func() { r.record("select", err) }()
	campaigns, err = r.next.List(ctx)
	return
}

func (r *InstrumentedCampaignRepository) Create(ctx context.Context, campaign models.Campaign) (stored models.Campaign, err error) {
	defer func() { r.record("insert", err) }()
	stored, err = r.next.Create(ctx, campaign)
	return
}

func (r *InstrumentedCampaignRepository) Update(ctx context.Context, campaign models.Campaign) (stored models.Campaign, err error) {
	defer func() { r.record("update", err) }()
	stored, err = r.next.Update(ctx, campaign)
	return
}

// InstrumentedVisitorRepository wraps a visitor repository with metrics collection
type InstrumentedVisitorRepository struct {
	next    service.VisitorRepository
	metrics *metrics.Metrics
}

// NewInstrumentedVisitorRepository creates a new instrumented visitor repository
func NewInstrumentedVisitorRepository(repo service.VisitorRepository, m *metrics.Metrics) service.VisitorRepository {
	return &InstrumentedVisitorRepository{next: repo, metrics: m}
}

func (r *InstrumentedVisitorRepository) record(operation, table string, err error) {
	// A missing visitor row is the expected first-visit case, not an error
	r.metrics.RecordDatabaseQuery(operation, table)
	if err != nil && err != service.ErrNotFound {
		r.metrics.RecordDatabaseError(operation, errorType(err))
	}
}

func (r *InstrumentedVisitorRepository) GetByKey(ctx context.Context, visitorID, campaignID string) (visitor models.Visitor, err error) {
	defer func() { r.record("select", "visitors", err) }()
	visitor, err = r.next.GetByKey(ctx, visitorID, campaignID)
	return
}

func (r *InstrumentedVisitorRepository) Upsert(ctx context.Context, visitor models.Visitor) (stored models.Visitor, err error) {
	defer func() { r.record("upsert", "visitors", err) }()
	stored, err = r.next.Upsert(ctx, visitor)
	return
}

func (r *InstrumentedVisitorRepository) TouchLastSeen(ctx context.Context, visitorID, campaignID string, seen time.Time) (err error) {
	defer func() { r.record("update", "visitors", err) }()
	err = r.next.TouchLastSeen(ctx, visitorID, campaignID, seen)
	return
}

func (r *InstrumentedVisitorRepository) LatestByVisitorID(ctx context.Context, visitorID string) (visitor models.VisitorWithCampaign, err error) {
	defer func() { r.record("select", "visitors", err) }()
	visitor, err = r.next.LatestByVisitorID(ctx, visitorID)
	return
}

func (r *InstrumentedVisitorRepository) CreateSession(ctx context.Context, session models.VisitorSession) (err error) {
	defer func() { r.record("insert", "visitor_sessions", err) }()
	err = r.next.CreateSession(ctx, session)
	return
}

// errorType buckets repository errors for metric labels
func errorType(err error) string {
	if service.IsStoreUnavailable(err) {
		return "store_unavailable"
	}
	return "query_error"
}
