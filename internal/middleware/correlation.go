package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type correlationKey struct{}

const requestIDHeader = "X-Request-ID"

// maxRequestIDLength caps the ID we accept from clients so a hostile
// header cannot inflate every downstream log line.
const maxRequestIDLength = 64

// CorrelationID ensures every request carries a request ID, reusing the
// client's when it supplies a reasonable one and minting a UUID otherwise.
// The ID is echoed back in the response and attached to the context for
// the request logger.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), correlationKey{}, reqID)
		w.Header().Set(requestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request's correlation ID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(correlationKey{}).(string)
	return s, ok
}
