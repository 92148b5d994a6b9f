package simulator

import (
	"math"

	models "github.com/RoGogDBD/social-pulse/internal/model"
)

// PercentChange возвращает изменение последнего значения истории относительно
// предпоследнего в процентах, округлённое до двух знаков.
//
// Для истории короче двух записей возвращает 0, true.
// Если предпоследнее значение равно нулю, изменение не определено:
// возвращается 0, false.
func PercentChange(history []models.HistoryPoint) (float64, bool) {
	n := len(history)
	if n < 2 {
		return 0, true
	}

	prev := history[n-2].Value
	curr := history[n-1].Value
	if prev == 0 {
		return 0, false
	}

	raw := float64(curr-prev) / float64(prev) * 100
	return math.Round(raw*100) / 100, true
}
