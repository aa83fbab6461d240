package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type healthResponse struct {
	Status                  string  `json:"status"`
	Uptime                  string  `json:"uptime"`
	RSSBytes                uint64  `json:"rss_bytes"`
	SystemMemoryUsedPercent float64 `json:"system_memory_used_percent"`
}

// Health reports liveness. Stat failures leave the numbers at zero.
func Health(started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status: "ok",
			Uptime: time.Since(started).Round(time.Second).String(),
		}
		if p, err := process.NewProcessWithContext(r.Context(), int32(os.Getpid())); err == nil {
			if mi, err := p.MemoryInfoWithContext(r.Context()); err == nil {
				resp.RSSBytes = mi.RSS
			}
		}
		if vm, err := mem.VirtualMemoryWithContext(r.Context()); err == nil {
			resp.SystemMemoryUsedPercent = vm.UsedPercent
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
