package middleware

import (
	"net/http"

	reqcontext "github.com/dealinefunnel/countdown-service/internal/context"
)

// RequestIDMiddleware adds request IDs to incoming requests
type RequestIDMiddleware struct{}

// NewRequestIDMiddleware creates a new request ID middleware
func NewRequestIDMiddleware() *RequestIDMiddleware {
	return &RequestIDMiddleware{}
}

// Middleware returns the HTTP middleware function for request IDs
func (m *RequestIDMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Honor an ID from upstream (X-Request-ID header) when present
		existingRequestID := r.Header.Get("X-Request-ID")

		ctx := r.Context()
		if existingRequestID != "" {
			ctx = reqcontext.WithRequestID(ctx, existingRequestID)
			ctx = reqcontext.WithUserAgent(ctx, r.UserAgent())
			ctx = reqcontext.WithRemoteAddr(ctx, r.RemoteAddr)
		} else {
			ctx = reqcontext.NewRequestContext(ctx, r.UserAgent(), r.RemoteAddr)
		}

		// Echo the request ID so clients can correlate
		w.Header().Set("X-Request-ID", reqcontext.GetRequestID(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
