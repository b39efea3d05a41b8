package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dealinefunnel/countdown-service/internal/models"
)

// Client talks to the countdown service on behalf of an embedded widget.
// Every call runs under the retry policy: network failures and 5xx
// responses are retried on the exponential schedule, while 4xx responses
// surface immediately as an APIError.
type Client struct {
	baseURL string
	http    *http.Client
	policy  Policy
}

// APIError is a non-retryable rejection from the service (validation
// failure, unknown campaign, misconfigured campaign)
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("countdown api: %s (status %d)", e.Message, e.StatusCode)
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithPolicy overrides the retry policy
func WithPolicy(p Policy) ClientOption {
	return func(c *Client) {
		c.policy = p
	}
}

// NewClient creates a widget API client for the service at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		policy:  DefaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateVisitor mints a new visitor id from a device fingerprint
func (c *Client) GenerateVisitor(ctx context.Context, req models.GenerateVisitorRequest) (models.GenerateVisitorResponse, error) {
	var resp models.GenerateVisitorResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/visitor-generate", nil, req, &resp)
	return resp, err
}

// LookupVisitor fetches the visitor's latest campaign binding. A nil
// visitor with a nil error means the service has never assigned this id a
// deadline, which callers treat as a first visit.
func (c *Client) LookupVisitor(ctx context.Context, visitorID string) (*models.VisitorWithCampaign, error) {
	query := url.Values{"visitor_id": {visitorID}}
	var resp models.LookupResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/combined-visitor-lookup", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Visitor, nil
}

// SetDeadline asks the service to assign (or return the already-assigned)
// deadline for this visitor and campaign. The call is idempotent: repeat
// visits get the stored deadline back, never a fresh one.
func (c *Client) SetDeadline(ctx context.Context, visitorID, campaignID string) (models.SetDeadlineResponse, error) {
	req := models.SetDeadlineRequest{
		VisitorID:  visitorID,
		CampaignID: campaignID,
	}
	var resp models.SetDeadlineResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/visitor-storage/set", nil, req, &resp)
	return resp, err
}

// Storage fetches the stored deadline plus the campaign's render config
func (c *Client) Storage(ctx context.Context, visitorID, campaignID string) (models.StorageGetResponse, error) {
	query := url.Values{
		"visitor_id":  {visitorID},
		"campaign_id": {campaignID},
	}
	var resp models.StorageGetResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/visitor-storage-get", query, nil, &resp)
	return resp, err
}

// doJSON performs one JSON round-trip under the retry policy. The body is
// marshalled once up front so every attempt replays identical bytes.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", path, err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	return c.policy.Do(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return Transient(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body)
			return Transient(fmt.Errorf("%s %s: server returned %d", method, path, resp.StatusCode))
		case resp.StatusCode >= 400:
			var apiErr models.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
				apiErr.Error = http.StatusText(resp.StatusCode)
			}
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}

		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
		return nil
	})
}
