// Package httpapi exposes the credits monitor over HTTP.
//
// DESIGN: Two route families, matching the paths the UI widget already
// calls:
//   - /credit_tracker/*  simple file-backed tracker (config, balance, probes)
//   - /modal_credits/*   the credit ledger (status, reset, overrides)
//
// Plus /health, /stats (loopback only), and a server-rendered dashboard.
package httpapi

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/modalwatch/credits-monitor/internal/ledger"
	"github.com/modalwatch/credits-monitor/internal/monitoring"
	"github.com/modalwatch/credits-monitor/internal/probe"
	"github.com/modalwatch/credits-monitor/internal/store"
	"github.com/modalwatch/credits-monitor/internal/utils"
)

// Server wires the ledger, prober, and store into HTTP handlers.
type Server struct {
	ledger  *ledger.Ledger
	prober  probe.Prober
	store   *store.Store
	metrics *monitoring.MetricsCollector
}

// New creates the HTTP server facade.
func New(l *ledger.Ledger, p probe.Prober, st *store.Store, m *monitoring.MetricsCollector) *Server {
	return &Server{ledger: l, prober: p, store: st, metrics: m}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	r.Route("/credit_tracker", func(r chi.Router) {
		r.Get("/config", s.handleGetConfig)
		r.Get("/balance", s.handleGetBalance)
		r.Post("/balance", s.handlePostBalance)
		r.Get("/gpu_info", s.handleGPUInfo)
		r.Get("/compute_resources", s.handleComputeResources)
		r.Post("/reset", s.handleBalanceReset)
	})

	r.Route("/modal_credits", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/reset", s.handleLedgerReset)
		r.Post("/set_initial", s.handleSetInitial)
		r.Post("/gpu_override", s.handleGPUOverride)
		r.Get("/dashboard", s.handleDashboard)
	})

	return r
}

// requestLogger records per-request metrics and a debug log line.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if s.metrics != nil {
			s.metrics.RecordRequest(ww.Status() < http.StatusInternalServerError)
		}
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := utils.MarshalNoEscape(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// isLoopback reports whether addr is a loopback remote address.
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
