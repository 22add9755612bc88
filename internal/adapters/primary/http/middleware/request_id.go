package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kronos-hms/os-tracker-backend/internal/infrastructure/logging"
)

// RequestIDHeader is the HTTP header carrying the request id.
const RequestIDHeader = "X-Request-ID"

// RequestID ensures each request carries a unique id. An incoming
// X-Request-ID header is honored so ids survive proxy hops; otherwise a new
// one is generated. The id is stored in the context under the logging
// package's key, so every log line emitted downstream carries it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
