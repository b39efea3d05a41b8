package models

import (
	"time"
)

// Visitor holds one visitor's deadline for one campaign. The natural key is
// (visitor_id, campaign_id): the same visitor may hold independent deadlines
// across campaigns. The deadline is written exactly once at first assignment;
// only last_seen changes on repeat visits.
type Visitor struct {
	VisitorID   string    `json:"visitor_id" db:"visitor_id"`
	CampaignID  string    `json:"campaign_id" db:"campaign_id"`
	IPAddress   string    `json:"ip_address,omitempty" db:"ip_address"`
	Fingerprint string    `json:"fingerprint,omitempty" db:"fingerprint"`
	Deadline    time.Time `json:"deadline" db:"deadline"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LastSeen    time.Time `json:"last_seen" db:"last_seen"`
}

// VisitorSession is the audit row written when a fresh visitor id is minted
// by visitor-generate. It is never read back by the widget.
type VisitorSession struct {
	VisitorID   string    `json:"visitor_id" db:"visitor_id"`
	IPAddress   string    `json:"ip_address" db:"ip_address"`
	UserAgent   string    `json:"user_agent" db:"user_agent"`
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// VisitorWithCampaign is the combined-visitor-lookup projection: the visitor
// row plus the campaign it is bound to, nested under "campaigns" to match
// the widget's expected shape.
type VisitorWithCampaign struct {
	Visitor
	Campaign *CampaignSummary `json:"campaigns,omitempty"`
}

// CampaignSummary is the slice of campaign fields exposed on lookup
type CampaignSummary struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Type       CampaignType `json:"type"`
	Styles     Styles       `json:"styles"`
	TargetURLs []string     `json:"target_urls"`
}
