package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditline/internal/platform/metrics"
	"creditline/pkg/platform/middleware/request"
)

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(AccessLog(logger, m))
	r.Get("/api/view-loan/{loan_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/view-loan/42", nil)
	req.Header.Set(request.HeaderRequestID, "req-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-7", line["request_id"])
	assert.Equal(t, "/api/view-loan/{loan_id}", line["route"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])

	assert.InDelta(t, 1, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/view-loan/{loan_id}", http.MethodGet, "404")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.InFlight), 0)
}
