// Package httpapi - stats.go exposes operational counters as JSON.
//
// GET /stats returns request, reset, and probe-failure counts.
package httpapi

import (
	"net/http"
	"time"
)

// StatsResponse is the JSON response for GET /stats.
type StatsResponse struct {
	Uptime  string `json:"uptime"`
	Monitor struct {
		TotalRequests      int64 `json:"total_requests"`
		SuccessfulRequests int64 `json:"successful_requests"`
		Resets             int64 `json:"resets"`
		Overrides          int64 `json:"overrides"`
		ProbeFailures      int64 `json:"probe_failures"`
	} `json:"monitor"`
	Ledger struct {
		RemainingCredits float64 `json:"remaining_credits"`
		UsedCredits      float64 `json:"used_credits"`
		GPUType          string  `json:"gpu_type"`
	} `json:"ledger"`
}

// handleStats returns aggregated metrics as JSON.
// Restricted to localhost to prevent external access to operational metrics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r.RemoteAddr) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var resp StatsResponse
	if s.metrics != nil {
		resp.Uptime = time.Since(s.metrics.StartedAt()).Truncate(time.Second).String()
		stats := s.metrics.Stats()
		resp.Monitor.TotalRequests = stats["requests"]
		resp.Monitor.SuccessfulRequests = stats["successes"]
		resp.Monitor.Resets = stats["resets"]
		resp.Monitor.Overrides = stats["overrides"]
		resp.Monitor.ProbeFailures = stats["probe_failures"]
	}

	snap := s.ledger.Status()
	resp.Ledger.RemainingCredits = snap.RemainingCredits
	resp.Ledger.UsedCredits = snap.UsedCredits
	resp.Ledger.GPUType = snap.GPUType

	writeJSON(w, http.StatusOK, resp)
}
