package handler

import (
	"html"
	"math"
	"net/http"
	"strconv"
	"strings"

	models "github.com/RoGogDBD/social-pulse/internal/model"
)

// FormatThousands форматирует целое число с разделителем разрядов ",".
func FormatThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	sign := ""
	if v < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatChange возвращает подпись изменения: стрелку и модуль процента,
// либо "n/a", если изменение не определено.
func FormatChange(m models.MetricSnapshot) (text string, positive bool) {
	if !m.ChangeDefined || m.Change == nil {
		return "n/a", true
	}
	c := *m.Change
	if c >= 0 {
		return "▲ " + strconv.FormatFloat(math.Abs(c), 'f', 2, 64) + "%", true
	}
	return "▼ " + strconv.FormatFloat(math.Abs(c), 'f', 2, 64) + "%", false
}

func (h *Handler) HandleMetricsPage(w http.ResponseWriter, r *http.Request) {
	snap, _ := h.storage.Latest()

	builder := strings.Builder{}
	builder.WriteString("<html><head><title>Social Pulse</title></head><body><h1>Social Pulse</h1>")
	builder.WriteString(`<div class="metrics">`)
	for _, m := range snap.Metrics {
		change, positive := FormatChange(m)
		class := "positive"
		if !positive {
			class = "negative"
		}
		builder.WriteString(`<div class="metric-card">`)
		builder.WriteString(`<h2>` + html.EscapeString(m.Name) + `</h2>`)
		builder.WriteString(`<p class="metric-value">` + FormatThousands(m.Value) + `</p>`)
		builder.WriteString(`<p class="metric-change ` + class + `">` + change + `</p>`)
		builder.WriteString(`</div>`)
	}
	builder.WriteString("</div></body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(builder.String()))
}
