package middleware

import (
	"context"

	"github.com/dealinefunnel/countdown-service/internal/metrics"
	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// serviceMetricsMiddleware implements business metrics collection for
// VisitorDeadlineService
type serviceMetricsMiddleware struct {
	metrics *metrics.Metrics
	next    service.VisitorDeadlineService
}

// NewServiceMetricsMiddleware creates a new service metrics middleware
func NewServiceMetricsMiddleware(m *metrics.Metrics) func(service.VisitorDeadlineService) service.VisitorDeadlineService {
	return func(next service.VisitorDeadlineService) service.VisitorDeadlineService {
		return &serviceMetricsMiddleware{
			metrics: m,
			next:    next,
		}
	}
}

// GenerateVisitor counts freshly minted visitor ids
func (mw *serviceMetricsMiddleware) GenerateVisitor(ctx context.Context, req models.GenerateVisitorRequest) (models.GenerateVisitorResponse, error) {
	resp, err := mw.next.GenerateVisitor(ctx, req)
	if err == nil {
		mw.metrics.RecordVisitorGenerated()
	}
	return resp, err
}

// Lookup passes through untouched
func (mw *serviceMetricsMiddleware) Lookup(ctx context.Context, visitorID string) (*models.VisitorWithCampaign, error) {
	return mw.next.Lookup(ctx, visitorID)
}

// Assign counts deadline assignments, split by new vs repeat visitors
func (mw *serviceMetricsMiddleware) Assign(ctx context.Context, visitorID, campaignID string) (service.Assignment, error) {
	assignment, err := mw.next.Assign(ctx, visitorID, campaignID)
	if err == nil {
		// Repeat visits skip the campaign fetch, so the type is unknown there
		campaignType := string(assignment.CampaignType)
		if campaignType == "" {
			campaignType = "unknown"
		}
		mw.metrics.RecordDeadlineAssignment(campaignType, assignment.IsNew)
	}
	return assignment, err
}

// Storage passes through untouched
func (mw *serviceMetricsMiddleware) Storage(ctx context.Context, visitorID, campaignID string) (models.StorageGetResponse, error) {
	return mw.next.Storage(ctx, visitorID, campaignID)
}
