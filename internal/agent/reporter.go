// Package agent отправляет снимки сессии во внешний коллектор метрик.
package agent

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/config"
	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/RoGogDBD/social-pulse/pkg/pool"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TicksMetric — имя счётчика тиков в отчёте.
const TicksMetric = "Ticks"

// ChangeSuffix добавляется к имени метрики для датчика процентного изменения.
const ChangeSuffix = "_change"

// Source — источник последнего снимка.
type Source interface {
	Latest() (models.Snapshot, bool)
}

// MetricsSender отправляет пакет метрик.
type MetricsSender interface {
	SendBatch(ctx context.Context, metrics []models.Metrics) error
}

// RestySender отправляет пакеты на {collector}/updates/ в gzip с подписью HMAC.
type RestySender struct {
	Client *resty.Client
	Key    string
}

// NewRestySender создаёт отправителя для коллектора по адресу addr (host:port или URL).
func NewRestySender(addr, key string) *RestySender {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(5 * time.Second)
	return &RestySender{Client: client, Key: key}
}

func computeHash(data []byte, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SendBatch отправляет пакет; ошибки сети и ответы 5xx повторяются через RetryWithBackoff.
func (rs *RestySender) SendBatch(ctx context.Context, metrics []models.Metrics) error {
	body, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	compressed, err := config.GzipCompress(body)
	if err != nil {
		return err
	}

	return config.RetryWithBackoff(ctx, func() error {
		req := rs.Client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("Content-Encoding", "gzip").
			SetBody(compressed)

		if rs.Key != "" {
			req.SetHeader("HashSHA256", computeHash(compressed, rs.Key))
		}

		resp, err := req.Post("/updates/")
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return fmt.Errorf("%w: failed to POST metrics batch: %v", config.ErrRetriable, err)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("%w: unexpected status: %d", config.ErrRetriable, resp.StatusCode())
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("unexpected status: %d", resp.StatusCode())
		}
		return nil
	})
}

// Reporter периодически отправляет последний снимок коллектору.
type Reporter struct {
	source   Source
	sender   MetricsSender
	interval time.Duration
	logger   *zap.Logger
	batches  *pool.Pool[*MetricsBatch]

	mu          sync.Mutex
	lastSession string
	lastTick    int64
}

// NewReporter создаёт Reporter с интервалом отправки interval.
func NewReporter(source Source, sender MetricsSender, interval time.Duration, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		source:   source,
		sender:   sender,
		interval: interval,
		logger:   logger,
		batches: pool.New(func() *MetricsBatch {
			return &MetricsBatch{Metrics: make([]models.Metrics, 0, 8)}
		}),
	}
}

// BuildBatch заполняет пакет: датчик на каждую метрику, датчик изменения,
// если оно определено, и счётчик тиков с приращением с момента lastTick.
func BuildBatch(b *MetricsBatch, snap models.Snapshot, lastTick int64) {
	b.SessionID = snap.SessionID
	b.Tick = snap.Tick
	for _, m := range snap.Metrics {
		b.AddGauge(m.Name, float64(m.Value))
		if m.ChangeDefined && m.Change != nil {
			b.AddGauge(m.Name+ChangeSuffix, *m.Change)
		}
	}
	if delta := snap.Tick - lastTick; delta > 0 {
		b.AddCounter(TicksMetric, delta)
	}
	b.bind()
}

// Report отправляет последний снимок. Если снимка ещё нет, ничего не делает.
func (r *Reporter) Report(ctx context.Context) error {
	snap, ok := r.source.Latest()
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	last := r.lastTick
	if snap.SessionID != r.lastSession {
		last = 0
	}

	batch := r.batches.Get()
	defer r.batches.Put(batch)
	BuildBatch(batch, snap, last)

	if err := r.sender.SendBatch(ctx, batch.Metrics); err != nil {
		return fmt.Errorf("failed to report tick %d: %w", snap.Tick, err)
	}

	r.lastSession = snap.SessionID
	r.lastTick = snap.Tick
	r.logger.Debug("metrics reported",
		zap.String("session_id", snap.SessionID),
		zap.Int64("tick", snap.Tick),
		zap.Int("metrics", len(batch.Metrics)),
	)
	return nil
}

// Run отправляет отчёты с интервалом до отмены ctx.
// Последнюю отправку после остановки тиков выполняет вызывающий через Report.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Report(ctx); err != nil {
				r.logger.Warn("report failed", zap.Error(err))
			}
		}
	}
}

// Flush выполняет последнюю отправку с собственным тайм-аутом.
func (r *Reporter) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Report(ctx); err != nil {
		r.logger.Warn("final report failed", zap.Error(err))
	}
}
