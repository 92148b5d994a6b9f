package agent

import (
	models "github.com/RoGogDBD/social-pulse/internal/model"
)

// MetricsBatch — пакет метрик одного отчёта коллектору.
// Экземпляры переиспользуются через pool.Pool.
type MetricsBatch struct {
	SessionID string
	Tick      int64
	Metrics   []models.Metrics
	values    []float64
	deltas    []int64
}

// Reset очищает пакет, сохраняя ёмкость срезов.
func (b *MetricsBatch) Reset() {
	if b == nil {
		return
	}
	b.SessionID = ""
	b.Tick = 0
	b.Metrics = b.Metrics[:0]
	b.values = b.values[:0]
	b.deltas = b.deltas[:0]
}

// AddGauge добавляет метрику-датчик.
func (b *MetricsBatch) AddGauge(id string, value float64) {
	b.values = append(b.values, value)
	b.Metrics = append(b.Metrics, models.Metrics{ID: id, MType: models.Gauge})
}

// AddCounter добавляет метрику-счётчик.
func (b *MetricsBatch) AddCounter(id string, delta int64) {
	b.deltas = append(b.deltas, delta)
	b.Metrics = append(b.Metrics, models.Metrics{ID: id, MType: models.Counter})
}

// bind проставляет указатели Value/Delta после того, как срезы значений перестали расти.
func (b *MetricsBatch) bind() {
	vi, di := 0, 0
	for i := range b.Metrics {
		switch b.Metrics[i].MType {
		case models.Gauge:
			b.Metrics[i].Value = &b.values[vi]
			b.Metrics[i].Delta = nil
			vi++
		case models.Counter:
			b.Metrics[i].Delta = &b.deltas[di]
			b.Metrics[i].Value = nil
			di++
		}
	}
}
