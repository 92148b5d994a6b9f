package simulator

import models "github.com/RoGogDBD/social-pulse/internal/model"

// DefaultCapacity — ёмкость истории по умолчанию.
const DefaultCapacity = 10

// AppendHistory добавляет точку в конец истории и возвращает новый срез.
//
// Если длина результата превышает capacity, сохраняются только последние capacity
// записей (самые старые вытесняются первыми). Порядок вставки не меняется.
// Исходный срез не изменяется и не разделяет память с результатом.
// При capacity <= 0 используется DefaultCapacity.
func AppendHistory(history []models.HistoryPoint, point models.HistoryPoint, capacity int) []models.HistoryPoint {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	start := 0
	if n := len(history) + 1; n > capacity {
		start = n - capacity
	}

	out := make([]models.HistoryPoint, 0, len(history)-start+1)
	out = append(out, history[start:]...)
	return append(out, point)
}
