package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestExporter_OnSnapshot_TableDriven(t *testing.T) {
	tests := []struct {
		name       string
		snapshots  []models.Snapshot
		wantValue  map[string]float64
		wantChange map[string]float64
		wantTicks  float64
	}{
		{
			name: "seed snapshot does not count as tick",
			snapshots: []models.Snapshot{
				{Tick: 0, Timestamp: time.Unix(100, 0), Metrics: []models.MetricSnapshot{{Name: "likes", Value: 700}}},
			},
			wantValue:  map[string]float64{"likes": 700},
			wantChange: map[string]float64{},
			wantTicks:  0,
		},
		{
			name: "defined change exported",
			snapshots: []models.Snapshot{
				{Tick: 1, Timestamp: time.Unix(104, 0), Metrics: []models.MetricSnapshot{
					{Name: "followers", Value: 1230, Change: ptr(2.5), ChangeDefined: true},
					{Name: "comments", Value: 5},
				}},
				{Tick: 2, Timestamp: time.Unix(108, 0), Metrics: []models.MetricSnapshot{
					{Name: "followers", Value: 1200, Change: ptr(-2.44), ChangeDefined: true},
					{Name: "comments", Value: 0},
				}},
			},
			wantValue:  map[string]float64{"followers": 1200, "comments": 0},
			wantChange: map[string]float64{"followers": -2.44},
			wantTicks:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExporter()
			for _, s := range tt.snapshots {
				require.NoError(t, e.OnSnapshot(s))
			}
			for name, want := range tt.wantValue {
				require.InDelta(t, want, testutil.ToFloat64(e.metricValue.WithLabelValues(name)), 1e-9)
			}
			require.Equal(t, len(tt.wantChange), testutil.CollectAndCount(e.metricChange))
			for name, want := range tt.wantChange {
				require.InDelta(t, want, testutil.ToFloat64(e.metricChange.WithLabelValues(name)), 1e-9)
			}
			require.InDelta(t, tt.wantTicks, testutil.ToFloat64(e.ticks), 1e-9)
		})
	}
}

func TestExporter_MiddlewareAndHandler(t *testing.T) {
	e := NewExporter()
	require.NoError(t, e.OnSnapshot(models.Snapshot{
		Tick: 1, Timestamp: time.Unix(104, 0),
		Metrics: []models.MetricSnapshot{{Name: "likes", Value: 712}},
	}))

	r := chi.NewRouter()
	r.Use(e.Middleware)
	r.Get("/value/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", e.Handler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/value/shares", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	require.InDelta(t, 3, testutil.ToFloat64(e.totalRequests.WithLabelValues("GET", "/value/{name}", "404")), 1e-9)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	require.True(t, strings.Contains(text, `social_pulse_metric_value{metric="likes"} 712`))
	require.Contains(t, text, "social_pulse_ticks_total 1")
	require.Contains(t, text, "go_goroutines")
}
