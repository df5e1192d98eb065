// Package store persists monitor state as human-readable JSON files.
//
// DESIGN: One record per file, whole-file overwrites. An absent or
// malformed file always resolves to "absent" so callers re-initialize
// defaults instead of failing; malformed content is logged at warn and
// otherwise ignored.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/modalwatch/credits-monitor/internal/utils"
)

// File names inside the data directory. These match the layout the UI
// widget already knows about.
const (
	ledgerFile  = "modal_credits_data.json"
	configFile  = "config.json"
	balanceFile = "balance.json"
)

// ErrNotJSONObject rejects balance payloads that are not JSON objects.
var ErrNotJSONObject = errors.New("store: balance payload must be a JSON object")

// LedgerRecord is the durable form of the credit ledger.
// Field names are fixed for compatibility with existing persisted files.
type LedgerRecord struct {
	InitialCredits float64 `json:"initial_credits"`
	CreditsUsed    float64 `json:"credits_used"`
	SessionStart   float64 `json:"session_start"` // unix seconds
	ModalToken     string  `json:"modal_token"`
	SessionID      string  `json:"session_id,omitempty"`
	LastSave       string  `json:"last_save,omitempty"`
}

// TrackerConfig is the simple tracker's configuration record.
type TrackerConfig struct {
	StartingBalance float64 `json:"starting_balance"`
}

// BalanceRecord is the simple tracker's balance record.
type BalanceRecord struct {
	LastUpdated      string  `json:"last_updated"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// Store reads and writes monitor records under a single data directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// LoadLedger returns the persisted ledger record, or ok=false when the file
// is absent or malformed.
func (s *Store) LoadLedger() (LedgerRecord, bool) {
	var rec LedgerRecord
	path := filepath.Join(s.dir, ledgerFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, false
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("store: malformed ledger record, treating as absent")
		return LedgerRecord{}, false
	}
	return rec, true
}

// SaveLedger overwrites the ledger record, stamping last_save for
// diagnostics.
func (s *Store) SaveLedger(rec LedgerRecord) error {
	rec.LastSave = time.Now().Format(time.RFC3339)
	data, err := utils.MarshalIndentNoEscape(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, ledgerFile), data, 0o600)
}

// LoadConfig returns the tracker config record, or ok=false when absent or
// malformed. The config file is written by the operator, never by us.
func (s *Store) LoadConfig() (TrackerConfig, bool) {
	var cfg TrackerConfig
	path := filepath.Join(s.dir, configFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("store: malformed config record, treating as absent")
		return TrackerConfig{}, false
	}
	return cfg, true
}

// LoadBalanceRaw returns the stored balance JSON verbatim, or ok=false.
func (s *Store) LoadBalanceRaw() ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, balanceFile))
	if err != nil || !gjson.ValidBytes(data) {
		return nil, false
	}
	return data, true
}

// SaveBalanceRaw persists caller-supplied balance JSON as-is, stamping
// last_updated. The payload shape is owned by the UI; we only require it to
// be a JSON object.
func (s *Store) SaveBalanceRaw(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, ErrNotJSONObject
	}
	stamped, err := sjson.SetBytes(data, "last_updated", time.Now().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.dir, balanceFile), stamped, 0o600); err != nil {
		return nil, err
	}
	return stamped, nil
}

// SaveBalance persists a structured balance record.
func (s *Store) SaveBalance(rec BalanceRecord) error {
	data, err := utils.MarshalIndentNoEscape(rec)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, balanceFile), data, 0o600)
}
