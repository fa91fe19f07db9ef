package api

import (
	"net/http"
	"runtime"
	"time"
)

// healthResponse reports process liveness and resource usage.
type healthResponse struct {
	Status      string      `json:"status"`
	ServerTime  string      `json:"serverTime"`
	Uptime      float64     `json:"uptime"`
	MemoryUsage memoryUsage `json:"memoryUsage"`
}

// memoryUsage contains Go runtime memory statistics.
type memoryUsage struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "running",
		ServerTime: time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(s.startTime).Seconds(),
		MemoryUsage: memoryUsage{
			AllocMB:      float64(memStats.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(memStats.Sys) / 1024 / 1024,
			NumGC:        memStats.NumGC,
		},
	})
}
