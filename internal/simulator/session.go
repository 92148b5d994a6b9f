package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultInterval — период тика по умолчанию.
const DefaultInterval = 4 * time.Second

// ErrAlreadyRunning возвращается при повторном запуске сессии.
var ErrAlreadyRunning = errors.New("session already running")

// Notifier получает снимок после каждого тика.
type Notifier interface {
	Notify(snapshot models.Snapshot)
}

// SessionConfig — параметры сессии.
type SessionConfig struct {
	Metrics  []MetricSpec
	Capacity int
	Interval time.Duration
}

// Option настраивает Session.
type Option func(*Session)

// WithClock задаёт часы сессии.
func WithClock(clock Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithRand задаёт источник случайных чисел.
func WithRand(rng Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithSeed задаёт детерминированный источник случайных чисел.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithNotifier подключает получателя снимков.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithLogger задаёт логгер.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithSessionID задаёт идентификатор сессии вместо случайного UUID.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithRestore восстанавливает значения и истории метрик из сохранённого снимка.
// Метрики, отсутствующие в снимке, начинают с начального значения.
func WithRestore(saved models.Snapshot) Option {
	return func(s *Session) { s.restore = &saved }
}

// Session владеет состоянием дашборда и обновляет его по таймеру.
//
// Все метрики тика применяются под одной блокировкой, поэтому читатели
// никогда не видят частично обновлённое состояние.
type Session struct {
	// tickMu упорядочивает шаг и уведомление: получатель видит тики по возрастанию.
	tickMu   sync.Mutex
	mu       sync.RWMutex
	state    State
	rng      Rand
	interval time.Duration

	id       string
	clock    Clock
	notifier Notifier
	logger   *zap.Logger
	restore  *models.Snapshot

	runMu  sync.Mutex
	handle *Handle
}

// NewSession создаёт сессию. Конфигурация должна пройти ValidateSpecs.
func NewSession(cfg SessionConfig, opts ...Option) (*Session, error) {
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = DefaultMetrics()
	}
	if err := ValidateSpecs(cfg.Metrics, cfg.Capacity); err != nil {
		return nil, err
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidSpec, cfg.Interval)
	}

	s := &Session{
		interval: cfg.Interval,
		clock:    RealClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}

	s.state = NewState(s.id, cfg.Metrics, cfg.Capacity, s.clock.Now())
	if s.restore != nil {
		for i, spec := range cfg.Metrics {
			if saved, ok := s.restore.Metric(spec.Name); ok {
				s.state.Metrics[i] = RestoreMetric(spec, saved, cfg.Capacity)
			}
		}
		s.restore = nil
	}

	return s, nil
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// Interval возвращает период тика.
func (s *Session) Interval() time.Duration {
	return s.interval
}

// Snapshot возвращает согласованный снимок текущего состояния.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Snapshot()
}

// Tick выполняет один тик с текущим временем часов.
func (s *Session) Tick() models.Snapshot {
	return s.TickAt(s.clock.Now())
}

// TickAt выполняет один тик с заданным временем и уведомляет получателя.
//
// Вызовы сериализуются вместе с уведомлением, поэтому получатель не может
// вызывать TickAt из Notify.
func (s *Session) TickAt(now time.Time) models.Snapshot {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	s.state = Step(s.state, s.rng, now)
	snap := s.state.Snapshot()
	s.mu.Unlock()

	s.logger.Debug("session tick",
		zap.String("session_id", snap.SessionID),
		zap.Int64("tick", snap.Tick),
	)

	if s.notifier != nil {
		s.notifier.Notify(snap)
	}
	return snap
}

// Start запускает периодические тики.
func (s *Session) Start() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.handle != nil {
		return ErrAlreadyRunning
	}

	s.handle = NewScheduler(s.clock).Every(s.interval, func(t time.Time) {
		s.TickAt(t)
	})
	s.logger.Info("session started",
		zap.String("session_id", s.id),
		zap.Duration("interval", s.interval),
	)
	return nil
}

// Stop останавливает тики. Повторный вызов ничего не делает.
func (s *Session) Stop() {
	s.runMu.Lock()
	h := s.handle
	s.handle = nil
	s.runMu.Unlock()
	if h == nil {
		return
	}

	h.Cancel()
	s.logger.Info("session stopped", zap.String("session_id", s.id))
}

// Running сообщает, запущены ли тики.
func (s *Session) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.handle != nil
}
