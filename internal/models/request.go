package models

import (
	"errors"
	"strings"
	"time"
)

// GenerateVisitorRequest is the visitor-generate request body
type GenerateVisitorRequest struct {
	Fingerprint string `json:"fingerprint"`
	UserAgent   string `json:"userAgent"`
	CampaignID  string `json:"campaignId,omitempty"`
}

// Validate checks if the request has all required parameters
func (r *GenerateVisitorRequest) Validate() error {
	if strings.TrimSpace(r.Fingerprint) == "" {
		return errors.New("missing fingerprint param")
	}
	return nil
}

// LookupRequest is the combined-visitor-lookup query
type LookupRequest struct {
	VisitorID string `json:"visitor_id"`
}

// Validate checks if the request has all required parameters
func (r *LookupRequest) Validate() error {
	if strings.TrimSpace(r.VisitorID) == "" {
		return errors.New("missing visitor_id param")
	}
	return nil
}

// SetDeadlineRequest is the visitor-storage-set request body. The widget
// sends a proposed deadline for wire compatibility with older embeds, but
// the stored (server-computed) value always wins.
type SetDeadlineRequest struct {
	VisitorID  string     `json:"visitor_id"`
	CampaignID string     `json:"campaign_id"`
	Deadline   *time.Time `json:"deadline,omitempty"`
}

// Validate checks if the request has all required parameters
func (r *SetDeadlineRequest) Validate() error {
	if strings.TrimSpace(r.VisitorID) == "" {
		return errors.New("missing visitor_id param")
	}
	if strings.TrimSpace(r.CampaignID) == "" {
		return errors.New("missing campaign_id param")
	}
	return nil
}

// StorageGetRequest is the visitor-storage-get query
type StorageGetRequest struct {
	VisitorID  string `json:"visitor_id"`
	CampaignID string `json:"campaign_id"`
}

// Validate checks if the request has all required parameters
func (r *StorageGetRequest) Validate() error {
	if strings.TrimSpace(r.VisitorID) == "" {
		return errors.New("missing visitor_id param")
	}
	if strings.TrimSpace(r.CampaignID) == "" {
		return errors.New("missing campaign_id param")
	}
	return nil
}

// UpsertCampaignRequest carries the admin campaign create/update payload
type UpsertCampaignRequest struct {
	Title            string           `json:"title"`
	Type             CampaignType     `json:"type"`
	DurationMinutes  *int             `json:"duration_minutes,omitempty"`
	FixedDeadline    *time.Time       `json:"fixed_deadline,omitempty"`
	TargetURLs       []string         `json:"target_urls"`
	ExpirationAction ExpirationAction `json:"expiration_action"`
	Styles           Styles           `json:"styles"`
}

// ToCampaign converts the payload to a Campaign, leaving id/timestamps to
// the repository
func (r *UpsertCampaignRequest) ToCampaign() Campaign {
	return Campaign{
		Title:            r.Title,
		Type:             r.Type,
		DurationMinutes:  r.DurationMinutes,
		FixedDeadline:    r.FixedDeadline,
		TargetURLs:       r.TargetURLs,
		ExpirationAction: r.ExpirationAction,
		Styles:           r.Styles,
	}
}
