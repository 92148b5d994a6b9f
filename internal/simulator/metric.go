package simulator

import (
	"errors"
	"fmt"

	models "github.com/RoGogDBD/social-pulse/internal/model"
)

// Имена метрик по умолчанию.
const (
	Followers = "followers"
	Likes     = "likes"
	Comments  = "comments"
)

// ErrInvalidSpec возвращается при некорректном описании набора метрик.
var ErrInvalidSpec = errors.New("invalid metric spec")

// MetricSpec описывает отслеживаемую метрику.
//
// Поля:
//   - Name: имя метрики
//   - Seed: начальное значение
//   - MaxDelta: верхняя граница приращения за тик
type MetricSpec struct {
	Name     string `json:"name" yaml:"name"`
	Seed     int64  `json:"seed" yaml:"seed"`
	MaxDelta int64  `json:"max_delta" yaml:"max_delta"`
}

// DefaultMetrics возвращает набор метрик дашборда по умолчанию.
func DefaultMetrics() []MetricSpec {
	return []MetricSpec{
		{Name: Followers, Seed: 1200, MaxDelta: 30},
		{Name: Likes, Seed: 700, MaxDelta: 40},
		{Name: Comments, Seed: 150, MaxDelta: 20},
	}
}

// ValidateSpecs проверяет набор метрик и ёмкость истории.
func ValidateSpecs(specs []MetricSpec, capacity int) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: no metrics configured", ErrInvalidSpec)
	}
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidSpec, capacity)
	}

	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return fmt.Errorf("%w: empty metric name", ErrInvalidSpec)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: duplicate metric %q", ErrInvalidSpec, s.Name)
		}
		seen[s.Name] = struct{}{}
		if s.Seed < 0 {
			return fmt.Errorf("%w: metric %q has negative seed %d", ErrInvalidSpec, s.Name, s.Seed)
		}
		if s.MaxDelta <= 0 {
			return fmt.Errorf("%w: metric %q has non-positive max_delta %d", ErrInvalidSpec, s.Name, s.MaxDelta)
		}
	}
	return nil
}

// Metric — текущее значение и скользящая история одной метрики.
//
// После создания Value всегда равно значению последней точки History,
// а длина History не превышает Capacity.
type Metric struct {
	Name     string
	Value    int64
	MaxDelta int64
	Capacity int
	History  []models.HistoryPoint
}

// NewMetric создаёт метрику с одной начальной записью истории.
func NewMetric(spec MetricSpec, capacity int) Metric {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	seed := spec.Seed
	if seed < 0 {
		seed = 0
	}
	return Metric{
		Name:     spec.Name,
		Value:    seed,
		MaxDelta: spec.MaxDelta,
		Capacity: capacity,
		History:  []models.HistoryPoint{{Time: models.SeedLabel, Value: seed}},
	}
}

// RestoreMetric восстанавливает метрику из сохранённого снимка.
//
// История обрезается до capacity; если последняя точка не совпадает
// со значением, значение добавляется в конец истории.
func RestoreMetric(spec MetricSpec, saved models.MetricSnapshot, capacity int) Metric {
	m := NewMetric(spec, capacity)
	if saved.Value < 0 {
		return m
	}

	var history []models.HistoryPoint
	for _, p := range saved.History {
		if p.Value < 0 {
			continue
		}
		history = AppendHistory(history, p, m.Capacity)
	}
	if len(history) == 0 || history[len(history)-1].Value != saved.Value {
		history = AppendHistory(history, models.HistoryPoint{Time: models.SeedLabel, Value: saved.Value}, m.Capacity)
	}

	m.Value = saved.Value
	m.History = history
	return m
}

// Next возвращает метрику после одного тика. Исходная метрика не изменяется.
func (m Metric) Next(rng Rand, label string) Metric {
	next := Advance(rng, m.Value, m.MaxDelta)
	m.History = AppendHistory(m.History, models.HistoryPoint{Time: label, Value: next}, m.Capacity)
	m.Value = next
	return m
}

// Change возвращает процентное изменение метрики за последний тик.
func (m Metric) Change() (float64, bool) {
	return PercentChange(m.History)
}

// Snapshot возвращает независимую копию состояния метрики.
func (m Metric) Snapshot() models.MetricSnapshot {
	history := make([]models.HistoryPoint, len(m.History))
	copy(history, m.History)

	ms := models.MetricSnapshot{
		Name:     m.Name,
		Value:    m.Value,
		MaxDelta: m.MaxDelta,
		Capacity: m.Capacity,
		History:  history,
	}
	if change, ok := m.Change(); ok {
		ms.Change = &change
		ms.ChangeDefined = true
	}
	return ms
}
