package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Campaign is a countdown offer which marketers run on their pages.
// An evergreen campaign gives every visitor the same amount of time from
// their first visit; a fixed campaign shares one absolute deadline.
type Campaign struct {
	ID               string           `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	Type             CampaignType     `json:"type" db:"type"`
	DurationMinutes  *int             `json:"duration_minutes,omitempty" db:"duration_minutes"`
	FixedDeadline    *time.Time       `json:"fixed_deadline,omitempty" db:"fixed_deadline"`
	TargetURLs       []string         `json:"target_urls" db:"target_urls"`
	ExpirationAction ExpirationAction `json:"expiration_action" db:"expiration_action"`
	Styles           Styles           `json:"styles" db:"styles"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// CampaignType represents the deadline scheme of a campaign
type CampaignType string

// enum values for CampaignType
const (
	TypeEvergreen CampaignType = "evergreen"
	TypeFixed     CampaignType = "fixed"
)

// ErrMisconfiguredCampaign signals that a campaign carries neither a usable
// duration nor a fixed deadline. Non-retryable.
var ErrMisconfiguredCampaign = errors.New("campaign is misconfigured")

// Validate checks the campaign invariant: exactly one of duration_minutes
// (evergreen) or fixed_deadline (fixed) is meaningful for its type.
func (c *Campaign) Validate() error {
	if c.Title == "" {
		return errors.New("missing campaign title")
	}
	switch c.Type {
	case TypeEvergreen:
		if c.DurationMinutes == nil || *c.DurationMinutes <= 0 {
			return fmt.Errorf("%w: evergreen campaign requires a positive duration_minutes", ErrMisconfiguredCampaign)
		}
	case TypeFixed:
		if c.FixedDeadline == nil || c.FixedDeadline.IsZero() {
			return fmt.Errorf("%w: fixed campaign requires a fixed_deadline", ErrMisconfiguredCampaign)
		}
	default:
		return fmt.Errorf("%w: unknown campaign type %q", ErrMisconfiguredCampaign, c.Type)
	}
	return nil
}

// DeadlineFor computes the deadline a first-time visitor gets at time now.
// Evergreen campaigns count forward from the first visit; fixed campaigns
// return their absolute deadline verbatim.
func (c *Campaign) DeadlineFor(now time.Time) (time.Time, error) {
	switch c.Type {
	case TypeEvergreen:
		if c.DurationMinutes == nil || *c.DurationMinutes <= 0 {
			return time.Time{}, fmt.Errorf("%w: evergreen campaign %s has no duration", ErrMisconfiguredCampaign, c.ID)
		}
		return now.Add(time.Duration(*c.DurationMinutes) * time.Minute), nil
	case TypeFixed:
		if c.FixedDeadline == nil || c.FixedDeadline.IsZero() {
			return time.Time{}, fmt.Errorf("%w: fixed campaign %s has no deadline", ErrMisconfiguredCampaign, c.ID)
		}
		return *c.FixedDeadline, nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown campaign type %q", ErrMisconfiguredCampaign, c.Type)
	}
}

// Styles holds the widget color scheme configured per campaign
type Styles struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Button     string `json:"button,omitempty"`
}

// Value implements driver.Valuer so Styles can be stored as JSONB
func (s Styles) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB columns
func (s *Styles) Scan(src any) error {
	return scanJSON(src, s)
}

// ExpirationAction describes what the widget renders once the deadline passes
type ExpirationAction struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Value implements driver.Valuer so ExpirationAction can be stored as JSONB
func (ea ExpirationAction) Value() (driver.Value, error) {
	return json.Marshal(ea)
}

// Scan implements sql.Scanner for JSONB columns
func (ea *ExpirationAction) Scan(src any) error {
	return scanJSON(src, ea)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", src)
	}
}

// CampaignConfig is the projection of a campaign handed to the widget by
// the visitor-storage-get endpoint
type CampaignConfig struct {
	TextTemplate string   `json:"text_template"`
	Styles       Styles   `json:"styles"`
	TargetPages  []string `json:"target_pages"`
}

// Config converts a campaign to its widget-facing projection
func (c *Campaign) Config() CampaignConfig {
	return CampaignConfig{
		TextTemplate: c.Title,
		Styles:       c.Styles,
		TargetPages:  c.TargetURLs,
	}
}
