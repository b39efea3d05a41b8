package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestCampaign_Validate(t *testing.T) {
	deadline := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		campaign Campaign
		wantErr  string
	}{
		{
			name: "valid evergreen",
			campaign: Campaign{
				Title:           "Flash sale ends in",
				Type:            TypeEvergreen,
				DurationMinutes: intPtr(1440),
			},
		},
		{
			name: "valid fixed",
			campaign: Campaign{
				Title:         "Launching in",
				Type:          TypeFixed,
				FixedDeadline: timePtr(deadline),
			},
		},
		{
			name:    "missing title",
			campaign: Campaign{Type: TypeEvergreen, DurationMinutes: intPtr(60)},
			wantErr: "missing campaign title",
		},
		{
			name:     "evergreen without duration",
			campaign: Campaign{Title: "t", Type: TypeEvergreen},
			wantErr:  "requires a positive duration_minutes",
		},
		{
			name:     "evergreen with zero duration",
			campaign: Campaign{Title: "t", Type: TypeEvergreen, DurationMinutes: intPtr(0)},
			wantErr:  "requires a positive duration_minutes",
		},
		{
			name:     "fixed without deadline",
			campaign: Campaign{Title: "t", Type: TypeFixed},
			wantErr:  "requires a fixed_deadline",
		},
		{
			name:     "unknown type",
			campaign: Campaign{Title: "t", Type: "weekly"},
			wantErr:  "unknown campaign type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.campaign.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCampaign_Validate_MisconfiguredSentinel(t *testing.T) {
	campaign := Campaign{Title: "t", Type: TypeEvergreen}

	err := campaign.Validate()
	assert.ErrorIs(t, err, ErrMisconfiguredCampaign)
}

func TestCampaign_DeadlineFor_Evergreen(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	campaign := Campaign{
		ID:              "flash-sale",
		Title:           "Flash sale ends in",
		Type:            TypeEvergreen,
		DurationMinutes: intPtr(1440),
	}

	deadline, err := campaign.DeadlineFor(now)
	assert.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), deadline)
}

func TestCampaign_DeadlineFor_FixedReturnsVerbatim(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	fixed := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	campaign := Campaign{
		ID:            "product-launch",
		Title:         "Launching in",
		Type:          TypeFixed,
		FixedDeadline: timePtr(fixed),
	}

	deadline, err := campaign.DeadlineFor(now)
	assert.NoError(t, err)
	assert.Equal(t, fixed, deadline)

	// A fixed deadline in the past still comes back verbatim; expiry is the
	// render loop's concern, not the assignment's
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	campaign.FixedDeadline = timePtr(past)
	deadline, err = campaign.DeadlineFor(now)
	assert.NoError(t, err)
	assert.Equal(t, past, deadline)
}

func TestCampaign_DeadlineFor_Misconfigured(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		campaign Campaign
	}{
		{"evergreen without duration", Campaign{ID: "a", Type: TypeEvergreen}},
		{"fixed without deadline", Campaign{ID: "b", Type: TypeFixed}},
		{"unknown type", Campaign{ID: "c", Type: "weekly"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.campaign.DeadlineFor(now)
			assert.ErrorIs(t, err, ErrMisconfiguredCampaign)
		})
	}
}

func TestCampaign_Config(t *testing.T) {
	campaign := Campaign{
		ID:         "flash-sale",
		Title:      "Flash sale ends in",
		Type:       TypeEvergreen,
		TargetURLs: []string{"/offers/*"},
		Styles: Styles{
			Background: "#1e293b",
			Text:       "#f8fafc",
		},
	}

	config := campaign.Config()
	assert.Equal(t, "Flash sale ends in", config.TextTemplate)
	assert.Equal(t, campaign.Styles, config.Styles)
	assert.Equal(t, []string{"/offers/*"}, config.TargetPages)
}

func TestStyles_ScanRoundTrip(t *testing.T) {
	styles := Styles{Background: "#000", Text: "#fff", Button: "#f59e0b"}

	value, err := styles.Value()
	assert.NoError(t, err)

	var scanned Styles
	assert.NoError(t, scanned.Scan(value))
	assert.Equal(t, styles, scanned)

	// Postgres drivers hand JSONB back as either []byte or string
	var fromString Styles
	assert.NoError(t, fromString.Scan(`{"background":"#000","text":"#fff"}`))
	assert.Equal(t, "#000", fromString.Background)

	var fromNil Styles
	assert.NoError(t, fromNil.Scan(nil))
}
