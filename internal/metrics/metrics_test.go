package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alianca-go/internal/gateway"
	"alianca-go/internal/gateway/memory"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.InstrumentHandler)
	r.Get("/api/activities/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/api/activities/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/activities/{id}", "404"))
	assert.Equal(t, float64(2), count)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "alianca_http_requests_total"))
}

func TestGatewayRecordsOutcomes(t *testing.T) {
	m := New()
	gw := m.Gateway(memory.New().Unique("group_members", "group_id", "user_id"))
	ctx := context.Background()

	row := map[string]any{"group_id": "g1", "user_id": "u1"}
	require.NoError(t, gw.Insert(ctx, "group_members", row))
	err := gw.Insert(ctx, "group_members", row)
	require.ErrorIs(t, err, gateway.ErrConflict)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.gatewayCalls.WithLabelValues("insert", "group_members", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.gatewayCalls.WithLabelValues("insert", "group_members", "conflict")))
}
