// Package telemetry экспортирует значения метрик сессии и HTTP-статистику в формате Prometheus.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "social_pulse"

// Exporter держит собственный реестр, чтобы несколько экземпляров
// (например, в тестах) не конфликтовали в глобальном.
type Exporter struct {
	registry *prometheus.Registry

	metricValue     *prometheus.GaugeVec
	metricChange    *prometheus.GaugeVec
	ticks           prometheus.Counter
	lastTick        prometheus.Gauge
	totalRequests   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge
}

// NewExporter создаёт экспортёр и регистрирует все коллекторы.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		metricValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "metric_value",
				Help:      "Current value of a simulated social metric",
			},
			[]string{"metric"},
		),
		metricChange: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "metric_change_percent",
				Help:      "Percent change between the last two history points",
			},
			[]string{"metric"},
		),
		ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Total number of simulator ticks observed",
			},
		),
		lastTick: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_tick_timestamp_seconds",
				Help:      "Unix time of the last simulator tick",
			},
		),
		totalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_active",
				Help:      "Number of active HTTP requests",
			},
		),
	}

	e.registry.MustRegister(
		e.metricValue,
		e.metricChange,
		e.ticks,
		e.lastTick,
		e.totalRequests,
		e.requestDuration,
		e.activeRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return e
}

// Registry возвращает реестр экспортёра.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// OnSnapshot обновляет gauge-метрики по снимку тика.
// Если изменение не определено, gauge изменения удаляется.
func (e *Exporter) OnSnapshot(snapshot models.Snapshot) error {
	for _, m := range snapshot.Metrics {
		e.metricValue.WithLabelValues(m.Name).Set(float64(m.Value))
		if m.ChangeDefined && m.Change != nil {
			e.metricChange.WithLabelValues(m.Name).Set(*m.Change)
		} else {
			e.metricChange.DeleteLabelValues(m.Name)
		}
	}
	if snapshot.Tick > 0 {
		e.ticks.Inc()
	}
	e.lastTick.Set(float64(snapshot.Timestamp.Unix()))
	return nil
}

// Handler возвращает обработчик страницы /metrics.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry})
}

// Middleware считает запросы по шаблону маршрута chi.
func (e *Exporter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		e.activeRequests.Inc()
		defer e.activeRequests.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		e.totalRequests.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		e.requestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}
