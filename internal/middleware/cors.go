package middleware

import (
	"net/http"
	"strconv"
)

// CORSMiddleware adds CORS headers for the embedded widget. The embed
// script runs on arbitrary host pages, so every /api response carries the
// headers and OPTIONS preflights short-circuit with 204.
type CORSMiddleware struct {
	allowedOrigin string
}

// NewCORSMiddleware creates a new CORS middleware. origin "*" allows any
// host page; a concrete origin pins the widget to one site.
func NewCORSMiddleware(allowedOrigin string) *CORSMiddleware {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &CORSMiddleware{allowedOrigin: allowedOrigin}
}

const preflightMaxAge = 86400

// Middleware returns the HTTP middleware function for CORS
func (m *CORSMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", m.allowedOrigin)
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Request-ID")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Max-Age", strconv.Itoa(preflightMaxAge))

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
