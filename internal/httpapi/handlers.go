package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/modalwatch/credits-monitor/internal/rates"
	"github.com/modalwatch/credits-monitor/internal/store"
)

// maxBodySize bounds request payloads; balance records are tiny.
const maxBodySize = 1 << 20

// handleHealth returns service health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"time":    time.Now().Format(time.RFC3339),
		"version": "1.0.0",
	})
}

// handleGetConfig returns the operator-written tracker config, 404 when
// absent.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.store.LoadConfig()
	if !ok {
		writeError(w, "Config not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleGetBalance returns the stored balance JSON verbatim, 404 when
// absent.
func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.store.LoadBalanceRaw()
	if !ok {
		writeError(w, "Balance not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

// handlePostBalance persists caller-supplied balance JSON. The payload
// shape belongs to the UI; we only validate that it is a JSON object.
func (s *Server) handlePostBalance(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := s.store.SaveBalanceRaw(body); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleGPUInfo reports the detected GPU name.
func (s *Server) handleGPUInfo(w http.ResponseWriter, r *http.Request) {
	rep := s.prober.GPU(r.Context())
	if !rep.Success && s.metrics != nil {
		s.metrics.RecordProbeFailure()
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleComputeResources reports logical cores and total memory.
func (s *Server) handleComputeResources(w http.ResponseWriter, r *http.Request) {
	res := s.prober.Resources(r.Context())
	if !res.Success && s.metrics != nil {
		s.metrics.RecordProbeFailure()
	}
	writeJSON(w, http.StatusOK, res)
}

// handleBalanceReset rewrites the balance record from the config's
// starting balance.
func (s *Server) handleBalanceReset(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.store.LoadConfig()
	if !ok {
		writeError(w, "Config not found", http.StatusNotFound)
		return
	}
	rec := store.BalanceRecord{
		LastUpdated:      time.Now().Format(time.RFC3339),
		RemainingBalance: cfg.StartingBalance,
	}
	if err := s.store.SaveBalance(rec); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordReset()
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "balance": rec})
}

// handleStatus returns the full ledger snapshot, accruing cost first.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Status())
}

// handleLedgerReset resets the ledger. The body may carry an optional new
// starting balance; an empty body keeps the current one.
func (s *Server) handleLedgerReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InitialCredits *float64 `json:"initial_credits"`
	}
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := s.ledger.Reset(req.InitialCredits); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordReset()
	}
	log.Info().Msg("httpapi: credits reset")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Credits reset successfully",
	})
}

// handleSetInitial overwrites the starting balance without a reset.
func (s *Server) handleSetInitial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount *float64 `json:"amount"`
	}
	if err := decodeOptional(r, &req); err != nil || req.Amount == nil {
		writeError(w, "amount is required", http.StatusInternalServerError)
		return
	}
	if _, err := s.ledger.SetInitialBalance(*req.Amount); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordOverride()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Initial credits set to $%.2f", *req.Amount),
	})
}

// handleGPUOverride replaces the active tier. "AUTO" re-probes the
// hardware; any other value is used as-is (unknown tiers bill at the
// fallback rate).
func (s *Server) handleGPUOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GPUType string `json:"gpu_type"`
	}
	if err := decodeOptional(r, &req); err != nil || req.GPUType == "" {
		writeError(w, "gpu_type is required", http.StatusInternalServerError)
		return
	}

	tier := rates.Tier(req.GPUType)
	if req.GPUType == "AUTO" {
		tier = s.prober.GPU(r.Context()).Tier
	}
	snap := s.ledger.OverrideTier(tier)
	if s.metrics != nil {
		s.metrics.RecordOverride()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("GPU tier set to %s", snap.GPUType),
	})
}

// decodeOptional decodes a JSON body into v. An empty body is fine;
// malformed JSON is not.
func decodeOptional(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
