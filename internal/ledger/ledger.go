// Package ledger implements session credit accounting.
//
// DESIGN: A single Ledger instance owns the balance state for the process.
// Every mutating path (accrual, reset, overrides) runs under one mutex so
// consumed credits are monotonic between resets even with concurrent HTTP
// requests. Accrual is lazy: credits are charged when state is read, based
// on wall-clock time since the last checkpoint.
package ledger

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/modalwatch/credits-monitor/internal/identity"
	"github.com/modalwatch/credits-monitor/internal/rates"
	"github.com/modalwatch/credits-monitor/internal/store"
)

// Options configures a Ledger.
type Options struct {
	// DefaultInitial is the starting balance when no persisted record exists.
	DefaultInitial float64
	// SaveInterval is the minimum wall-clock gap between opportunistic
	// writes. Explicit resets and overrides always write immediately.
	SaveInterval time.Duration
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Ledger tracks credit consumption for the current session.
type Ledger struct {
	mu sync.Mutex

	store    *store.Store
	ids      identity.Source
	clock    func() time.Time
	interval time.Duration

	tier          rates.Tier
	costPerSecond float64

	initial      float64
	consumed     float64
	sessionStart time.Time
	sessionID    string
	token        string

	lastCheckpoint time.Time
	lastSave       time.Time
}

// Snapshot is a point-in-time rendering of ledger state for reporting.
// Monetary fields are rounded to 2 decimal places.
type Snapshot struct {
	RemainingCredits float64 `json:"remaining_credits"`
	UsedCredits      float64 `json:"used_credits"`
	InitialCredits   float64 `json:"initial_credits"`
	Percentage       int     `json:"percentage"`
	GPUType          string  `json:"gpu_type"`
	CostPerHour      float64 `json:"cost_per_hour"`
	SessionDuration  float64 `json:"session_duration"` // seconds
	SessionID        string  `json:"session_id,omitempty"`
}

// New constructs the ledger, loading persisted state when present.
//
// The identity token comparison happens here only: if both the stored and
// the currently observed token are non-empty and differ, the loaded state
// is discarded and the ledger resets. An empty observed token means
// "unknown" and never forces a reset.
func New(st *store.Store, ids identity.Source, tier rates.Tier, opts Options) *Ledger {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	l := &Ledger{
		store:         st,
		ids:           ids,
		clock:         opts.Clock,
		interval:      opts.SaveInterval,
		tier:          tier,
		costPerSecond: rates.PerSecond(tier),
	}

	rec, ok := st.LoadLedger()
	if !ok {
		l.resetLocked(opts.DefaultInitial)
		return l
	}

	now := l.clock()
	l.initial = rec.InitialCredits
	l.consumed = rec.CreditsUsed
	l.sessionStart = time.Unix(0, int64(rec.SessionStart*float64(time.Second)))
	l.sessionID = rec.SessionID
	l.token = rec.ModalToken
	l.lastCheckpoint = now

	if current := ids.Token(); current != "" && rec.ModalToken != "" && current != rec.ModalToken {
		log.Info().Msg("ledger: identity token changed, resetting credits")
		l.resetLocked(l.initial)
	}
	return l
}

// Status accrues cost since the last checkpoint, opportunistically persists,
// and returns a snapshot.
func (l *Ledger) Status() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	l.accrueLocked(now)
	l.maybeSaveLocked(now)
	return l.snapshotLocked(now)
}

// Reset zeroes consumption, restarts the session clock, recaptures the
// identity token, and persists immediately. A non-nil initial replaces the
// starting balance.
func (l *Ledger) Reset(initial *float64) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.initial
	if initial != nil {
		if *initial < 0 {
			return Snapshot{}, fmt.Errorf("ledger: initial credits must be >= 0, got %f", *initial)
		}
		next = *initial
	}
	l.resetLocked(next)
	return l.snapshotLocked(l.clock()), nil
}

// OverrideTier replaces the active tier and accrual rate. Consumption and
// balance are untouched; only future accrual changes.
func (l *Ledger) OverrideTier(tier rates.Tier) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	// Charge time already elapsed at the old rate before switching.
	l.accrueLocked(now)
	l.tier = tier
	l.costPerSecond = rates.PerSecond(tier)
	l.persistLocked(now)
	return l.snapshotLocked(now)
}

// SetInitialBalance overwrites the starting balance without resetting
// consumption or the session clock, and persists immediately.
func (l *Ledger) SetInitialBalance(amount float64) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount < 0 {
		return Snapshot{}, fmt.Errorf("ledger: initial credits must be >= 0, got %f", amount)
	}
	now := l.clock()
	l.accrueLocked(now)
	l.initial = amount
	l.persistLocked(now)
	return l.snapshotLocked(now), nil
}

func (l *Ledger) resetLocked(initial float64) {
	now := l.clock()
	l.initial = initial
	l.consumed = 0
	l.sessionStart = now
	l.sessionID = uuid.NewString()
	l.token = l.ids.Token()
	l.lastCheckpoint = now
	l.persistLocked(now)
}

// accrueLocked charges elapsed wall-clock time at the current rate.
// Elapsed is clamped at zero so a clock step backwards never refunds.
func (l *Ledger) accrueLocked(now time.Time) {
	elapsed := now.Sub(l.lastCheckpoint)
	if elapsed > 0 {
		l.consumed += elapsed.Seconds() * l.costPerSecond
	}
	l.lastCheckpoint = now
}

// maybeSaveLocked persists when at least SaveInterval has passed since the
// last successful write.
func (l *Ledger) maybeSaveLocked(now time.Time) {
	if now.Sub(l.lastSave) < l.interval {
		return
	}
	l.persistLocked(now)
}

func (l *Ledger) persistLocked(now time.Time) {
	rec := store.LedgerRecord{
		InitialCredits: l.initial,
		CreditsUsed:    l.consumed,
		SessionStart:   float64(l.sessionStart.UnixNano()) / float64(time.Second),
		ModalToken:     l.token,
		SessionID:      l.sessionID,
	}
	if err := l.store.SaveLedger(rec); err != nil {
		log.Error().Err(err).Msg("ledger: failed to persist record")
		return
	}
	l.lastSave = now
}

func (l *Ledger) snapshotLocked(now time.Time) Snapshot {
	remaining := l.initial - l.consumed
	if remaining < 0 {
		remaining = 0
	}

	percentage := 0
	if l.initial > 0 {
		percentage = int(math.Floor(remaining / l.initial * 100))
	}

	return Snapshot{
		RemainingCredits: round2(remaining),
		UsedCredits:      round2(l.consumed),
		InitialCredits:   l.initial,
		Percentage:       percentage,
		GPUType:          string(l.tier),
		CostPerHour:      rates.RateFor(l.tier),
		SessionDuration:  now.Sub(l.sessionStart).Seconds(),
		SessionID:        l.sessionID,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
