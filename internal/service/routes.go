package service

import (
	"net/http"

	"github.com/RoGogDBD/social-pulse/internal/config"
	"github.com/RoGogDBD/social-pulse/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options описывает необязательные части роутера.
//
// Поля:
//   - Stream: обработчик websocket-подписки (/ws); nil — маршрут не регистрируется
//   - Metrics: обработчик страницы Prometheus (/metrics); nil — маршрут не регистрируется
//   - Instrument: middleware сбора HTTP-статистики
//   - RateLimit: допустимое число запросов к /api в секунду; 0 — без ограничения
type Options struct {
	Stream     http.Handler
	Metrics    http.Handler
	Instrument func(http.Handler) http.Handler
	RateLimit  int
}

// NewRouter создает и настраивает HTTP-роутер дашборда.
//
// Параметры:
//   - h: обработчик запросов (handler.Handler)
//   - opts: необязательные части роутера
//   - logger: логгер для логирования запросов
//
// Возвращает:
//   - *chi.Mux: настроенный роутер
func NewRouter(h *handler.Handler, opts Options, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID) // Добавляет уникальный идентификатор запроса
	r.Use(middleware.RealIP)    // Определяет реальный IP клиента
	r.Use(middleware.Recoverer) // Восстанавливает после паники

	// websocket обслуживается без обёрток ResponseWriter: апгрейду нужен http.Hijacker
	if opts.Stream != nil {
		r.Handle("/ws", opts.Stream)
	}

	r.Group(func(r chi.Router) {
		r.Use(config.RequestLogger(logger)) // Логирует запросы с помощью zap
		if opts.Instrument != nil {
			r.Use(opts.Instrument)
		}
		r.Use(middleware.Compress(5)) // Сжимает ответы

		r.Get("/", h.HandleMetricsPage)
		r.Get("/value/{name}", h.HandleGetMetricValue)
		r.Get("/ping", h.HandlePing)
		r.Get("/health", h.HandleHealth)
		if opts.Metrics != nil {
			r.Handle("/metrics", opts.Metrics)
		}

		r.Route("/api", func(r chi.Router) {
			if opts.RateLimit > 0 {
				r.Use(RateLimit(rate.Limit(opts.RateLimit), opts.RateLimit))
			}
			r.Get("/snapshot", h.HandleSnapshot)
			r.Get("/metrics/{name}", h.HandleGetMetric)
			r.Get("/charts/engagement", h.HandleEngagement)
			r.Get("/charts/{name}", h.HandleChart)
			r.Get("/archive/{name}", h.HandleArchive)
		})
	})

	return r
}

// RateLimit ограничивает поток запросов token bucket'ом и отвечает 429 при переполнении.
func RateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
