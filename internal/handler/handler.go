package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/RoGogDBD/social-pulse/internal/repository"
	"github.com/RoGogDBD/social-pulse/internal/simulator"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultArchiveLimit = 100
	maxArchiveLimit     = 1000
)

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrInvalidLimit  = errors.New("invalid limit")
)

// Archive — долговременное хранилище истории метрик.
type Archive interface {
	Ping(ctx context.Context) error
	History(ctx context.Context, name string, limit int) ([]models.HistoryPoint, error)
}

// SessionStatus сообщает, идут ли тики.
type SessionStatus interface {
	Running() bool
}

type Handler struct {
	storage   repository.Storage
	archive   Archive
	session   SessionStatus
	hostStats HostStatsFunc
	key       string
	logger    *zap.Logger
}

func NewHandler(storage repository.Storage, archive Archive) *Handler {
	return &Handler{
		storage:   storage,
		archive:   archive,
		hostStats: CollectHostStats,
		logger:    zap.NewNop(),
	}
}

func (h *Handler) SetKey(key string) {
	h.key = key
}

func (h *Handler) SetLogger(logger *zap.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

func (h *Handler) SetSession(session SessionStatus) {
	h.session = session
}

func (h *Handler) computeHash(data []byte) string {
	hash := hmac.New(sha256.New, []byte(h.key))
	hash.Write(data)
	return hex.EncodeToString(hash.Sum(nil))
}

func (h *Handler) writeJSONWithHash(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if h.key != "" {
		w.Header().Set("HashSHA256", h.computeHash(body))
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (h *Handler) metric(w http.ResponseWriter, r *http.Request) (models.MetricSnapshot, bool) {
	name := chi.URLParam(r, "name")
	m, ok := h.storage.Metric(name)
	if !ok {
		http.Error(w, ErrUnknownMetric.Error()+": "+name, http.StatusNotFound)
	}
	return m, ok
}

func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.storage.Latest()
	if !ok {
		http.Error(w, repository.ErrNoSnapshot.Error(), http.StatusServiceUnavailable)
		return
	}
	h.writeJSONWithHash(w, http.StatusOK, snap)
}

func (h *Handler) HandleGetMetric(w http.ResponseWriter, r *http.Request) {
	m, ok := h.metric(w, r)
	if !ok {
		return
	}
	h.writeJSONWithHash(w, http.StatusOK, m)
}

func (h *Handler) HandleGetMetricValue(w http.ResponseWriter, r *http.Request) {
	m, ok := h.metric(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strconv.FormatInt(m.Value, 10)))
}

// HandleChart отдаёт серию точек линейного графика одной метрики.
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.metric(w, r)
	if !ok {
		return
	}
	series := m.History
	if series == nil {
		series = []models.HistoryPoint{}
	}
	h.writeJSONWithHash(w, http.StatusOK, series)
}

// HandleEngagement отдаёт сравнительную серию лайков и комментариев.
func (h *Handler) HandleEngagement(w http.ResponseWriter, r *http.Request) {
	likes, ok := h.storage.Metric(simulator.Likes)
	if !ok {
		http.Error(w, ErrUnknownMetric.Error()+": "+simulator.Likes, http.StatusNotFound)
		return
	}
	comments, _ := h.storage.Metric(simulator.Comments)
	h.writeJSONWithHash(w, http.StatusOK, simulator.Engagement(likes.History, comments.History))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultArchiveLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidLimit
	}
	if n > maxArchiveLimit {
		n = maxArchiveLimit
	}
	return n, nil
}

// HandleArchive отдаёт архивную историю метрики из базы данных.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	if _, ok := h.storage.Metric(name); !ok {
		http.Error(w, ErrUnknownMetric.Error()+": "+name, http.StatusNotFound)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	points, err := h.archive.History(r.Context(), name, limit)
	if err != nil {
		h.logger.Error("failed to read archive", zap.String("metric", name), zap.Error(err))
		http.Error(w, "failed to read archive", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []models.HistoryPoint{}
	}
	h.writeJSONWithHash(w, http.StatusOK, points)
}

func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		http.Error(w, "database not configured", http.StatusInternalServerError)
		return
	}
	if err := h.archive.Ping(r.Context()); err != nil {
		http.Error(w, "database not reachable: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
