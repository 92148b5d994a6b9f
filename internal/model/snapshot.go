package models

import "time"

// SeedLabel — метка времени начальной записи истории.
const SeedLabel = "Now"

// HistoryPoint — одна точка истории метрики.
//
// Time — метка времени в формате "15:04:05" (для начальной записи — SeedLabel).
// Value — значение метрики в момент тика.
type HistoryPoint struct {
	Time  string `json:"time"`
	Value int64  `json:"value"`
}

// MetricSnapshot — состояние одной метрики на момент тика.
//
// Change равен nil, если процентное изменение не определено
// (предыдущее значение равно нулю).
type MetricSnapshot struct {
	Name          string         `json:"name"`
	Value         int64          `json:"value"`
	MaxDelta      int64          `json:"max_delta"`
	Capacity      int            `json:"capacity"`
	Change        *float64       `json:"change"`
	ChangeDefined bool           `json:"change_defined"`
	History       []HistoryPoint `json:"history"`
}

// Snapshot — согласованное состояние всех метрик сессии после одного тика.
type Snapshot struct {
	SessionID string           `json:"session_id"`
	Tick      int64            `json:"tick"`
	Timestamp time.Time        `json:"timestamp"`
	Metrics   []MetricSnapshot `json:"metrics"`
}

// Metric возвращает снимок метрики по имени.
func (s Snapshot) Metric(name string) (MetricSnapshot, bool) {
	for _, m := range s.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricSnapshot{}, false
}

// EngagementPoint — точка сравнительной диаграммы лайков и комментариев.
type EngagementPoint struct {
	Time     string `json:"time"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
}
