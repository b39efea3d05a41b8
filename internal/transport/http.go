package transport

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/gorilla/mux"

	"github.com/dealinefunnel/countdown-service/internal/endpoint"
	"github.com/dealinefunnel/countdown-service/internal/models"
	"github.com/dealinefunnel/countdown-service/internal/service"
)

// NewHTTPHandler creates HTTP handlers for the countdown service
func NewHTTPHandler(visitorEndpoints endpoint.VisitorEndpoints, campaignEndpoints endpoint.CampaignEndpoints, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
	}

	generateVisitorHandler := httptransport.NewServer(
		visitorEndpoints.GenerateVisitorEndpoint,
		decodeGenerateVisitorRequest,
		encodeGenerateVisitorResponse,
		options...,
	)
	lookupHandler := httptransport.NewServer(
		visitorEndpoints.LookupEndpoint,
		decodeLookupRequest,
		encodeLookupResponse,
		options...,
	)
	setDeadlineHandler := httptransport.NewServer(
		visitorEndpoints.SetDeadlineEndpoint,
		decodeSetDeadlineRequest,
		encodeSetDeadlineResponse,
		options...,
	)
	storageGetHandler := httptransport.NewServer(
		visitorEndpoints.StorageGetEndpoint,
		decodeStorageGetRequest,
		encodeStorageGetResponse,
		options...,
	)

	createCampaignHandler := httptransport.NewServer(
		campaignEndpoints.CreateCampaignEndpoint,
		decodeCreateCampaignRequest,
		encodeCampaignResponse,
		options...,
	)
	getCampaignHandler := httptransport.NewServer(
		campaignEndpoints.GetCampaignEndpoint,
		decodeGetCampaignRequest,
		encodeCampaignResponse,
		options...,
	)
	listCampaignsHandler := httptransport.NewServer(
		campaignEndpoints.ListCampaignsEndpoint,
		decodeListCampaignsRequest,
		encodeListCampaignsResponse,
		options...,
	)
	updateCampaignHandler := httptransport.NewServer(
		campaignEndpoints.UpdateCampaignEndpoint,
		decodeUpdateCampaignRequest,
		encodeCampaignResponse,
		options...,
	)

	r := mux.NewRouter()

	// Widget-facing endpoints
	r.Handle("/api/visitor-generate", generateVisitorHandler).Methods("POST")
	r.Handle("/api/combined-visitor-lookup", lookupHandler).Methods("GET")
	r.Handle("/api/visitor-storage/set", setDeadlineHandler).Methods("POST")
	// Older embeds call the flat path
	r.Handle("/api/visitor-storage-set", setDeadlineHandler).Methods("POST")
	r.Handle("/api/visitor-storage-get", storageGetHandler).Methods("GET")

	// Admin campaign CRUD
	r.Handle("/api/campaigns", createCampaignHandler).Methods("POST")
	r.Handle("/api/campaigns", listCampaignsHandler).Methods("GET")
	r.Handle("/api/campaigns/{id}", getCampaignHandler).Methods("GET")
	r.Handle("/api/campaigns/{id}", updateCampaignHandler).Methods("PUT")

	// Embed snippet for host pages
	r.HandleFunc("/embed", embedHandler).Methods("GET")

	// Health check endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")

	return r
}

// decodeGenerateVisitorRequest decodes the visitor-generate request body
func decodeGenerateVisitorRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body models.GenerateVisitorRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, service.NewValidationError(errors.New("invalid request body"))
	}
	return endpoint.GenerateVisitorRequest{GenerateVisitorRequest: body}, nil
}

// encodeGenerateVisitorResponse encodes the visitor-generate response
func encodeGenerateVisitorResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.GenerateVisitorResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return writeJSON(w, http.StatusOK, resp.Visitor)
}

// decodeLookupRequest decodes the combined-visitor-lookup query
func decodeLookupRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return endpoint.LookupRequest{
		VisitorID: r.URL.Query().Get("visitor_id"),
	}, nil
}

// encodeLookupResponse encodes the combined-visitor-lookup response. A nil
// visitor serializes as {"visitor": null}: the widget's first-visit signal.
func encodeLookupResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.LookupResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return writeJSON(w, http.StatusOK, models.LookupResponse{Visitor: resp.Visitor})
}

// decodeSetDeadlineRequest decodes the visitor-storage-set request body
func decodeSetDeadlineRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body models.SetDeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, service.NewValidationError(errors.New("invalid request body"))
	}
	return endpoint.SetDeadlineRequest{SetDeadlineRequest: body}, nil
}

// encodeSetDeadlineResponse encodes the visitor-storage-set response
func encodeSetDeadlineResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.SetDeadlineResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return writeJSON(w, http.StatusOK, models.SetDeadlineResponse{
		Success:  true,
		Deadline: resp.Assignment.Deadline,
	})
}

// decodeStorageGetRequest decodes the visitor-storage-get query
func decodeStorageGetRequest(_ context.Context, r *http.Request) (interface{}, error) {
	query := r.URL.Query()
	return endpoint.StorageGetRequest{
		VisitorID:  query.Get("visitor_id"),
		CampaignID: query.Get("campaign_id"),
	}, nil
}

// encodeStorageGetResponse encodes the visitor-storage-get response
func encodeStorageGetResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.StorageGetResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return writeJSON(w, http.StatusOK, resp.Storage)
}

// decodeCreateCampaignRequest decodes the campaign create request body
func decodeCreateCampaignRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var payload models.UpsertCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, service.NewValidationError(errors.New("invalid request body"))
	}
	return endpoint.CreateCampaignRequest{Payload: payload}, nil
}

// decodeGetCampaignRequest decodes the campaign get request
func decodeGetCampaignRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return endpoint.GetCampaignRequest{ID: mux.Vars(r)["id"]}, nil
}

// decodeListCampaignsRequest decodes the campaign list request
func decodeListCampaignsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return endpoint.ListCampaignsRequest{}, nil
}

// decodeUpdateCampaignRequest decodes the campaign update request
func decodeUpdateCampaignRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var payload models.UpsertCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, service.NewValidationError(errors.New("invalid request body"))
	}
	return endpoint.UpdateCampaignRequest{ID: mux.Vars(r)["id"], Payload: payload}, nil
}

// encodeCampaignResponse encodes a single-campaign response
func encodeCampaignResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.CampaignResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	return writeJSON(w, http.StatusOK, resp.Campaign)
}

// encodeListCampaignsResponse encodes the campaign list response
func encodeListCampaignsResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	resp := response.(endpoint.ListCampaignsResponse)
	if resp.Err != nil {
		encodeError(ctx, resp.Err, w)
		return nil
	}
	if resp.Campaigns == nil {
		resp.Campaigns = []models.Campaign{}
	}
	return writeJSON(w, http.StatusOK, resp.Campaigns)
}

// encodeError maps the error taxonomy to HTTP statuses. Store failures stay
// opaque: internals never leak to the embed script.
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case service.IsValidation(err):
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.NewErrorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.NewErrorResponse("not found"))
	case errors.Is(err, models.ErrMisconfiguredCampaign):
		// 422 keeps misconfiguration distinguishable from transient store
		// failures, so the widget's retry wrapper gives up immediately
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(models.NewErrorResponse("campaign misconfigured"))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.NewErrorResponse("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// embedHandler serves the snippet host pages paste in to mount a widget
func embedHandler(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaign_id")
	if campaignID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.NewErrorResponse("missing campaign_id param"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<div data-countdown-widget data-campaign-id="` + html.EscapeString(campaignID) + `" style="min-height:100px"></div>
<script type="module" src="/countdown.js" async></script>
`))
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "countdown-service",
		"version": "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}
