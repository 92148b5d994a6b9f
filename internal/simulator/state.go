package simulator

import (
	"time"

	models "github.com/RoGogDBD/social-pulse/internal/model"
)

// TimeLabelLayout — формат метки времени точек истории.
const TimeLabelLayout = "15:04:05"

// State — явное состояние сессии дашборда.
type State struct {
	SessionID string
	Tick      int64
	UpdatedAt time.Time
	Metrics   []Metric
}

// NewState создаёт начальное состояние: по одной метрике на каждую спецификацию.
func NewState(sessionID string, specs []MetricSpec, capacity int, now time.Time) State {
	metrics := make([]Metric, 0, len(specs))
	for _, spec := range specs {
		metrics = append(metrics, NewMetric(spec, capacity))
	}
	return State{
		SessionID: sessionID,
		UpdatedAt: now,
		Metrics:   metrics,
	}
}

// Step применяет один тик ко всем метрикам и возвращает новое состояние.
//
// Метрики обновляются последовательно и независимо, каждая со своим MaxDelta.
// Исходное состояние не изменяется.
func Step(state State, rng Rand, now time.Time) State {
	label := now.Format(TimeLabelLayout)

	metrics := make([]Metric, len(state.Metrics))
	for i, m := range state.Metrics {
		metrics[i] = m.Next(rng, label)
	}

	state.Metrics = metrics
	state.Tick++
	state.UpdatedAt = now
	return state
}

// Snapshot возвращает снимок состояния для слоя отображения.
func (s State) Snapshot() models.Snapshot {
	metrics := make([]models.MetricSnapshot, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		metrics = append(metrics, m.Snapshot())
	}
	return models.Snapshot{
		SessionID: s.SessionID,
		Tick:      s.Tick,
		Timestamp: s.UpdatedAt,
		Metrics:   metrics,
	}
}
