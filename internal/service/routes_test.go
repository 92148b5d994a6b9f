package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/handler"
	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/RoGogDBD/social-pulse/internal/repository"
	"github.com/RoGogDBD/social-pulse/internal/stream"
	"github.com/RoGogDBD/social-pulse/internal/telemetry"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func seededStorage() *repository.MemStorage {
	s := repository.NewMemStorage()
	s.Save(models.Snapshot{
		SessionID: "routes",
		Tick:      1,
		Timestamp: time.Date(2026, 1, 2, 10, 0, 4, 0, time.UTC),
		Metrics: []models.MetricSnapshot{
			{Name: "likes", Value: 710, History: []models.HistoryPoint{{Time: "Now", Value: 700}, {Time: "10:00:04", Value: 710}}},
			{Name: "comments", Value: 150, History: []models.HistoryPoint{{Time: "Now", Value: 150}}},
		},
	})
	return s
}

func TestNewRouter_TableDriven(t *testing.T) {
	storage := seededStorage()
	h := handler.NewHandler(storage, nil)
	exporter := telemetry.NewExporter()
	r := NewRouter(h, Options{
		Metrics:    exporter.Handler(),
		Instrument: exporter.Middleware,
	}, zap.NewNop())

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/value/likes", http.StatusOK},
		{"GET", "/value/shares", http.StatusNotFound},
		{"GET", "/api/snapshot", http.StatusOK},
		{"GET", "/api/metrics/comments", http.StatusOK},
		{"GET", "/api/charts/likes", http.StatusOK},
		{"GET", "/api/charts/engagement", http.StatusOK},
		{"GET", "/api/archive/likes", http.StatusServiceUnavailable},
		{"GET", "/ping", http.StatusInternalServerError},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/ws", http.StatusNotFound},
		{"POST", "/api/snapshot", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestNewRouter_RateLimitOnlyOnAPI(t *testing.T) {
	h := handler.NewHandler(seededStorage(), nil)
	r := NewRouter(h, Options{RateLimit: 2}, zap.NewNop())

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/snapshot", nil))
		codes = append(codes, rec.Code)
	}
	require.Equal(t, http.StatusOK, codes[0])
	require.Contains(t, codes, http.StatusTooManyRequests)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/value/likes", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_TableDriven(t *testing.T) {
	tests := []struct {
		name      string
		burst     int
		requests  int
		wantOK    int
		wantLimit int
	}{
		{"within burst", 3, 3, 3, 0},
		{"over burst", 2, 5, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := RateLimit(rate.Every(time.Hour), tt.burst)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			limited := mw(next)

			ok, rejected := 0, 0
			for i := 0; i < tt.requests; i++ {
				rec := httptest.NewRecorder()
				limited.ServeHTTP(rec, httptest.NewRequest("GET", "/api/snapshot", nil))
				switch rec.Code {
				case http.StatusOK:
					ok++
				case http.StatusTooManyRequests:
					rejected++
					require.Equal(t, "1", rec.Header().Get("Retry-After"))
				}
			}
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantLimit, rejected)
		})
	}
}

func TestNewRouter_WebsocketStream(t *testing.T) {
	storage := seededStorage()
	hub := stream.NewHub(zap.NewNop())
	snap, _ := storage.Latest()
	require.NoError(t, hub.OnSnapshot(snap))

	r := NewRouter(handler.NewHandler(storage, nil), Options{Stream: hub}, zap.NewNop())
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.Snapshot
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "routes", got.SessionID)
}
