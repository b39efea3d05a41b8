package middleware

import (
	"context"
	"time"

	"github.com/go-kit/log"

	reqcontext "github.com/dealinefunnel/countdown-service/internal/context"
	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// loggingMiddleware implements logging middleware for VisitorDeadlineService
type loggingMiddleware struct {
	logger log.Logger
	next   service.VisitorDeadlineService
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger log.Logger) func(service.VisitorDeadlineService) service.VisitorDeadlineService {
	return func(next service.VisitorDeadlineService) service.VisitorDeadlineService {
		return &loggingMiddleware{
			logger: logger,
			next:   next,
		}
	}
}

func (mw *loggingMiddleware) log(ctx context.Context, begin time.Time, method string, err error, extra ...interface{}) {
	logFields := []interface{}{
		"method", method,
		"request_id", reqcontext.GetRequestID(ctx),
		"took", time.Since(begin),
	}
	logFields = append(logFields, extra...)

	if userAgent := reqcontext.GetUserAgent(ctx); userAgent != "" {
		logFields = append(logFields, "user_agent", userAgent)
	}
	if remoteAddr := reqcontext.GetRemoteAddr(ctx); remoteAddr != "" {
		logFields = append(logFields, "remote_addr", remoteAddr)
	}

	if err != nil {
		logFields = append(logFields, "error", err.Error(), "success", false)
	} else {
		logFields = append(logFields, "error", nil, "success", true)
	}

	mw.logger.Log(logFields...)
}

// GenerateVisitor implements service.VisitorDeadlineService with logging
func (mw *loggingMiddleware) GenerateVisitor(ctx context.Context, req models.GenerateVisitorRequest) (resp models.GenerateVisitorResponse, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, begin, "GenerateVisitor", err, "visitor_id", resp.VisitorID)
	}(time.Now())

	return mw.next.GenerateVisitor(ctx, req)
}

// Lookup implements service.VisitorDeadlineService with logging
func (mw *loggingMiddleware) Lookup(ctx context.Context, visitorID string) (visitor *models.VisitorWithCampaign, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, begin, "Lookup", err, "visitor_id", visitorID, "found", visitor != nil)
	}(time.Now())

	return mw.next.Lookup(ctx, visitorID)
}

// Assign implements service.VisitorDeadlineService with logging
func (mw *loggingMiddleware) Assign(ctx context.Context, visitorID, campaignID string) (assignment service.Assignment, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, begin, "Assign", err,
			"visitor_id", visitorID,
			"campaign_id", campaignID,
			"is_new", assignment.IsNew,
			"deadline", assignment.Deadline,
		)
	}(time.Now())

	return mw.next.Assign(ctx, visitorID, campaignID)
}

// Storage implements service.VisitorDeadlineService with logging
func (mw *loggingMiddleware) Storage(ctx context.Context, visitorID, campaignID string) (resp models.StorageGetResponse, err error) {
	defer func(begin time.Time) {
		mw.log(ctx, begin, "Storage", err, "visitor_id", visitorID, "campaign_id", campaignID)
	}(time.Now())

	return mw.next.Storage(ctx, visitorID, campaignID)
}
