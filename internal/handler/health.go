package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// HostStats — загрузка хоста, на котором работает процесс.
type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_used_percent"`
	MemoryTotal   uint64  `json:"memory_total"`
}

// HostStatsFunc получает загрузку хоста.
type HostStatsFunc func(ctx context.Context) (HostStats, error)

// CPUSampleInterval — окно, за которое измеряется загрузка CPU.
//
// При нулевом окне gopsutil сравнивает с предыдущим вызовом,
// и первое значение после запуска не имеет смысла.
const CPUSampleInterval = 200 * time.Millisecond

// CollectHostStats читает загрузку CPU и памяти через gopsutil.
func CollectHostStats(ctx context.Context) (HostStats, error) {
	return collectHostStats(ctx, CPUSampleInterval)
}

func collectHostStats(ctx context.Context, window time.Duration) (HostStats, error) {
	var stats HostStats

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return stats, err
	}
	stats.MemoryPercent = vm.UsedPercent
	stats.MemoryTotal = vm.Total

	percents, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return stats, err
	}
	if len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	return stats, nil
}

type sessionHealth struct {
	ID      string `json:"session_id"`
	Tick    int64  `json:"tick"`
	Running bool   `json:"running"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Session sessionHealth `json:"session"`
	Host    *HostStats    `json:"host,omitempty"`
}

// SetHostStats подменяет источник загрузки хоста.
func (h *Handler) SetHostStats(fn HostStatsFunc) {
	if fn != nil {
		h.hostStats = fn
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}

	if snap, ok := h.storage.Latest(); ok {
		resp.Session.ID = snap.SessionID
		resp.Session.Tick = snap.Tick
	}
	if h.session != nil {
		resp.Session.Running = h.session.Running()
	}
	if !resp.Session.Running {
		resp.Status = "degraded"
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if stats, err := h.hostStats(ctx); err != nil {
		h.logger.Warn("failed to collect host stats", zap.Error(err))
	} else {
		resp.Host = &stats
	}

	h.writeJSONWithHash(w, http.StatusOK, resp)
}
