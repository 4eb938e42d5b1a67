package testutil

import (
	"context"
	"net/http"
	"time"

	"creditline/pkg/requestcontext"
)

// Today is the pinned calendar date used across lending tests.
var Today = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

// ContextAt returns a background context whose request clock reads now.
func ContextAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}

// WithRequestTime pins the request-scoped clock, as the requesttime middleware would.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithRequestID attaches a correlation id, as the request middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
