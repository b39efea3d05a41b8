package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	reqcontext "github.com/dealinefunnel/countdown-service/internal/context"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSMiddleware_HeadersOnEveryResponse(t *testing.T) {
	handler := NewCORSMiddleware("*").Middleware(okHandler())

	req := httptest.NewRequest("GET", "/api/combined-visitor-lookup", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSMiddleware_PreflightShortCircuits(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler := NewCORSMiddleware("https://shop.example.com").Middleware(next)

	req := httptest.NewRequest("OPTIONS", "/api/visitor-generate", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called, "preflight must not reach the router")
}

func TestCORSMiddleware_EmptyOriginDefaultsToWildcard(t *testing.T) {
	handler := NewCORSMiddleware("").Middleware(okHandler())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDMiddleware_GeneratesAndEchoes(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqcontext.GetRequestID(r.Context())
	})
	handler := NewRequestIDMiddleware().Middleware(next)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_HonorsUpstreamID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqcontext.GetRequestID(r.Context())
	})
	handler := NewRequestIDMiddleware().Middleware(next)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "upstream-42", seen)
	assert.Equal(t, "upstream-42", w.Header().Get("X-Request-ID"))
}
