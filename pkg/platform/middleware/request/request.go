// Package request provides request correlation middleware.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"creditline/pkg/requestcontext"
)

// HeaderRequestID is the header used to propagate correlation ids.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLength bounds caller-supplied ids so they cannot flood logs.
const maxRequestIDLength = 128

// RequestID reuses a caller-supplied X-Request-ID or generates one, stores it in
// the context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
