package models

import "time"

// ErrorResponse represents error response format
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// GenerateVisitorResponse is the visitor-generate response body
type GenerateVisitorResponse struct {
	VisitorID string    `json:"visitorId"`
	CreatedAt time.Time `json:"created_at"`
}

// LookupResponse wraps the combined lookup result. Visitor is null when the
// visitor has never been assigned a deadline, which the widget treats as a
// first visit, not an error.
type LookupResponse struct {
	Visitor *VisitorWithCampaign `json:"visitor"`
}

// SetDeadlineResponse is the visitor-storage-set response body. Deadline is
// the row's post-upsert value, so a racing repeat caller sees the winner.
type SetDeadlineResponse struct {
	Success  bool      `json:"success"`
	Deadline time.Time `json:"deadline"`
}

// StorageGetResponse is the visitor-storage-get response body
type StorageGetResponse struct {
	Deadline       time.Time      `json:"deadline"`
	CampaignConfig CampaignConfig `json:"campaign_config"`
}
