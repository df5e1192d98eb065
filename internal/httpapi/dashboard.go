package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// handleDashboard serves the credits dashboard HTML page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Status()

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="5">
<title>Modal Credits Monitor</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: 'SF Mono', 'Fira Code', 'Cascadia Code', monospace; background: #0d1117; color: #c9d1d9; padding: 24px; }
  h1 { color: #58a6ff; font-size: 18px; margin-bottom: 16px; }
  .summary { display: flex; gap: 24px; margin-bottom: 24px; padding: 16px; background: #161b22; border: 1px solid #30363d; border-radius: 6px; }
  .stat-label { font-size: 11px; color: #8b949e; text-transform: uppercase; letter-spacing: 1px; }
  .stat-value { font-size: 24px; font-weight: bold; color: #f0f6fc; }
  .stat-value.cost { color: #ffa657; }
  .bar-container { width: 100%; height: 14px; background: #21262d; border-radius: 7px; overflow: hidden; margin-bottom: 24px; }
  .bar { height: 100%; border-radius: 7px; }
  .bar-ok { background: #3fb950; }
  .bar-warn { background: #d29922; }
  .bar-danger { background: #f85149; }
  .footer { margin-top: 16px; font-size: 11px; color: #484f58; }
</style>
</head>
<body>
<h1>Modal Credits Monitor</h1>
<div class="summary">
  <div class="stat">
    <div class="stat-label">Remaining</div>
    <div class="stat-value cost">`)
	fmt.Fprintf(&b, "$%.2f", snap.RemainingCredits)
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">Used</div>
    <div class="stat-value">`)
	fmt.Fprintf(&b, "$%.2f", snap.UsedCredits)
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">GPU</div>
    <div class="stat-value">`)
	b.WriteString(snap.GPUType)
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">Rate</div>
    <div class="stat-value">`)
	fmt.Fprintf(&b, "$%.2f/hr", snap.CostPerHour)
	b.WriteString(`</div>
  </div>
  <div class="stat">
    <div class="stat-label">Session</div>
    <div class="stat-value">`)
	b.WriteString(formatDuration(time.Duration(snap.SessionDuration * float64(time.Second))))
	b.WriteString(`</div>
  </div>
</div>
`)

	// Battery bar: green above 50%, amber above 20%, red below.
	barClass := "bar-ok"
	if snap.Percentage < 20 {
		barClass = "bar-danger"
	} else if snap.Percentage < 50 {
		barClass = "bar-warn"
	}
	fmt.Fprintf(&b, `<div class="bar-container"><div class="bar %s" style="width:%d%%"></div></div>
<div class="stat-label">Battery: %d%%</div>
`, barClass, snap.Percentage, snap.Percentage)

	b.WriteString(`
<div class="footer">Auto-refreshes every 5 seconds</div>
</body>
</html>`)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

// formatDuration renders a session duration like "2h 13m".
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
