package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id string) (models.Campaign, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) List(ctx context.Context) ([]models.Campaign, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	args := m.Called(ctx, campaign)
	return args.Get(0).(models.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, campaign models.Campaign) (models.Campaign, error) {
	args := m.Called(ctx, campaign)
	return args.Get(0).(models.Campaign), args.Error(1)
}

// MockVisitorRepository is a mock implementation of VisitorRepository
type MockVisitorRepository struct {
	mock.Mock
}

func (m *MockVisitorRepository) GetByKey(ctx context.Context, visitorID, campaignID string) (models.Visitor, error) {
	args := m.Called(ctx, visitorID, campaignID)
	return args.Get(0).(models.Visitor), args.Error(1)
}

func (m *MockVisitorRepository) Upsert(ctx context.Context, visitor models.Visitor) (models.Visitor, error) {
	args := m.Called(ctx, visitor)
	return args.Get(0).(models.Visitor), args.Error(1)
}

func (m *MockVisitorRepository) TouchLastSeen(ctx context.Context, visitorID, campaignID string, seen time.Time) error {
	args := m.Called(ctx, visitorID, campaignID, seen)
	return args.Error(0)
}

func (m *MockVisitorRepository) LatestByVisitorID(ctx context.Context, visitorID string) (models.VisitorWithCampaign, error) {
	args := m.Called(ctx, visitorID)
	return args.Get(0).(models.VisitorWithCampaign), args.Error(1)
}

func (m *MockVisitorRepository) CreateSession(ctx context.Context, session models.VisitorSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestDeadlineService_GenerateVisitor(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc := NewDeadlineServiceWithClock(campaigns, visitors, fixedClock(now))

	visitors.On("CreateSession", mock.Anything, mock.MatchedBy(func(s models.VisitorSession) bool {
		return s.Fingerprint == "fp-123" && s.UserAgent == "Mozilla/5.0" && s.VisitorID != ""
	})).Return(nil)

	resp, err := svc.GenerateVisitor(context.Background(), models.GenerateVisitorRequest{
		Fingerprint: "fp-123",
		UserAgent:   "Mozilla/5.0",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.VisitorID)
	assert.Equal(t, now, resp.CreatedAt)
	visitors.AssertExpectations(t)
}

func TestDeadlineService_GenerateVisitor_MissingFingerprint(t *testing.T) {
	svc := NewDeadlineService(&MockCampaignRepository{}, &MockVisitorRepository{})

	_, err := svc.GenerateVisitor(context.Background(), models.GenerateVisitorRequest{})

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "missing fingerprint param")
}

func TestDeadlineService_GenerateVisitor_UniqueIDs(t *testing.T) {
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(&MockCampaignRepository{}, visitors)

	visitors.On("CreateSession", mock.Anything, mock.Anything).Return(nil)

	first, err := svc.GenerateVisitor(context.Background(), models.GenerateVisitorRequest{Fingerprint: "fp"})
	assert.NoError(t, err)
	second, err := svc.GenerateVisitor(context.Background(), models.GenerateVisitorRequest{Fingerprint: "fp"})
	assert.NoError(t, err)

	// Same fingerprint, distinct ids: the fingerprint seeds the audit trail,
	// not the identifier
	assert.NotEqual(t, first.VisitorID, second.VisitorID)
}

func TestDeadlineService_Assign_FirstVisitEvergreen(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc := NewDeadlineServiceWithClock(campaigns, visitors, fixedClock(now))

	campaign := models.Campaign{
		ID:              "flash-sale",
		Title:           "Flash sale ends in",
		Type:            models.TypeEvergreen,
		DurationMinutes: intPtr(1440),
	}
	wantDeadline := now.Add(24 * time.Hour)

	visitors.On("GetByKey", mock.Anything, "v-1", "flash-sale").Return(models.Visitor{}, ErrNotFound)
	campaigns.On("GetByID", mock.Anything, "flash-sale").Return(campaign, nil)
	visitors.On("Upsert", mock.Anything, mock.MatchedBy(func(v models.Visitor) bool {
		return v.VisitorID == "v-1" && v.CampaignID == "flash-sale" && v.Deadline.Equal(wantDeadline)
	})).Return(models.Visitor{
		VisitorID:  "v-1",
		CampaignID: "flash-sale",
		Deadline:   wantDeadline,
	}, nil)

	assignment, err := svc.Assign(context.Background(), "v-1", "flash-sale")

	assert.NoError(t, err)
	assert.True(t, assignment.IsNew)
	assert.Equal(t, wantDeadline, assignment.Deadline)
	assert.Equal(t, models.TypeEvergreen, assignment.CampaignType)
	campaigns.AssertExpectations(t)
	visitors.AssertExpectations(t)
}

func TestDeadlineService_Assign_FirstVisitFixed(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	launch := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := NewDeadlineServiceWithClock(campaigns, visitors, fixedClock(now))

	campaign := models.Campaign{
		ID:            "product-launch",
		Title:         "Launching in",
		Type:          models.TypeFixed,
		FixedDeadline: timePtr(launch),
	}

	visitors.On("GetByKey", mock.Anything, "v-1", "product-launch").Return(models.Visitor{}, ErrNotFound)
	campaigns.On("GetByID", mock.Anything, "product-launch").Return(campaign, nil)
	visitors.On("Upsert", mock.Anything, mock.Anything).Return(models.Visitor{
		VisitorID:  "v-1",
		CampaignID: "product-launch",
		Deadline:   launch,
	}, nil)

	assignment, err := svc.Assign(context.Background(), "v-1", "product-launch")

	assert.NoError(t, err)
	assert.True(t, assignment.IsNew)
	// Fixed campaigns hand every visitor the same absolute deadline
	assert.Equal(t, launch, assignment.Deadline)
}

func TestDeadlineService_Assign_RepeatVisitReturnsStoredDeadline(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	stored := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	visitors.On("GetByKey", mock.Anything, "v-1", "flash-sale").Return(models.Visitor{
		VisitorID:  "v-1",
		CampaignID: "flash-sale",
		Deadline:   stored,
	}, nil)
	// The last_seen touch runs in the background and may or may not land
	// before the test finishes
	visitors.On("TouchLastSeen", mock.Anything, "v-1", "flash-sale", mock.Anything).Return(nil).Maybe()

	assignment, err := svc.Assign(context.Background(), "v-1", "flash-sale")

	assert.NoError(t, err)
	assert.False(t, assignment.IsNew)
	assert.Equal(t, stored, assignment.Deadline)
	// Repeat visits never consult the campaign: the stored deadline is final
	campaigns.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDeadlineService_Assign_Validation(t *testing.T) {
	svc := NewDeadlineService(&MockCampaignRepository{}, &MockVisitorRepository{})

	tests := []struct {
		name       string
		visitorID  string
		campaignID string
		wantErr    string
	}{
		{"missing visitor id", "", "flash-sale", "missing visitor_id param"},
		{"missing campaign id", "v-1", "", "missing campaign_id param"},
		{"both missing", "", "", "missing visitor_id param"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assign(context.Background(), tt.visitorID, tt.campaignID)
			assert.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeadlineService_Assign_UnknownCampaign(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	visitors.On("GetByKey", mock.Anything, "v-1", "ghost").Return(models.Visitor{}, ErrNotFound)
	campaigns.On("GetByID", mock.Anything, "ghost").Return(models.Campaign{}, ErrNotFound)

	_, err := svc.Assign(context.Background(), "v-1", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeadlineService_Assign_MisconfiguredCampaign(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	// Evergreen campaign without a duration cannot produce a deadline
	visitors.On("GetByKey", mock.Anything, "v-1", "broken").Return(models.Visitor{}, ErrNotFound)
	campaigns.On("GetByID", mock.Anything, "broken").Return(models.Campaign{
		ID:    "broken",
		Title: "Broken",
		Type:  models.TypeEvergreen,
	}, nil)

	_, err := svc.Assign(context.Background(), "v-1", "broken")
	assert.ErrorIs(t, err, models.ErrMisconfiguredCampaign)
	visitors.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestDeadlineService_Assign_StoreUnavailable(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	visitors.On("GetByKey", mock.Anything, "v-1", "flash-sale").
		Return(models.Visitor{}, NewStoreUnavailable(errors.New("connection refused")))

	_, err := svc.Assign(context.Background(), "v-1", "flash-sale")
	assert.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}

func TestDeadlineService_Lookup_FirstVisitIsNilNotError(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	visitors.On("LatestByVisitorID", mock.Anything, "v-new").
		Return(models.VisitorWithCampaign{}, ErrNotFound)

	visitor, err := svc.Lookup(context.Background(), "v-new")
	assert.NoError(t, err)
	assert.Nil(t, visitor)
}

func TestDeadlineService_Lookup_ReturnsLatestBinding(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	deadline := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	visitors.On("LatestByVisitorID", mock.Anything, "v-1").Return(models.VisitorWithCampaign{
		Visitor: models.Visitor{
			VisitorID:  "v-1",
			CampaignID: "flash-sale",
			Deadline:   deadline,
		},
		Campaign: &models.CampaignSummary{ID: "flash-sale", Type: models.TypeEvergreen},
	}, nil)
	visitors.On("TouchLastSeen", mock.Anything, "v-1", "flash-sale", mock.Anything).Return(nil).Maybe()

	visitor, err := svc.Lookup(context.Background(), "v-1")
	assert.NoError(t, err)
	assert.NotNil(t, visitor)
	assert.Equal(t, deadline, visitor.Deadline)
	assert.Equal(t, "flash-sale", visitor.Campaign.ID)
}

func TestDeadlineService_Lookup_MissingVisitorID(t *testing.T) {
	svc := NewDeadlineService(&MockCampaignRepository{}, &MockVisitorRepository{})

	_, err := svc.Lookup(context.Background(), "")
	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestDeadlineService_Storage(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	deadline := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	visitors.On("GetByKey", mock.Anything, "v-1", "flash-sale").Return(models.Visitor{
		VisitorID:  "v-1",
		CampaignID: "flash-sale",
		Deadline:   deadline,
	}, nil)
	campaigns.On("GetByID", mock.Anything, "flash-sale").Return(models.Campaign{
		ID:         "flash-sale",
		Title:      "Flash sale ends in",
		Type:       models.TypeEvergreen,
		TargetURLs: []string{"/offers/*"},
	}, nil)

	resp, err := svc.Storage(context.Background(), "v-1", "flash-sale")
	assert.NoError(t, err)
	assert.Equal(t, deadline, resp.Deadline)
	assert.Equal(t, "Flash sale ends in", resp.CampaignConfig.TextTemplate)
	assert.Equal(t, []string{"/offers/*"}, resp.CampaignConfig.TargetPages)
}

func TestDeadlineService_Storage_UnassignedVisitor(t *testing.T) {
	campaigns := &MockCampaignRepository{}
	visitors := &MockVisitorRepository{}
	svc := NewDeadlineService(campaigns, visitors)

	visitors.On("GetByKey", mock.Anything, "v-new", "flash-sale").
		Return(models.Visitor{}, ErrNotFound)

	_, err := svc.Storage(context.Background(), "v-new", "flash-sale")
	assert.ErrorIs(t, err, ErrNotFound)
	campaigns.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
