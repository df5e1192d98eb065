// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined here.
// This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// SERVER
// =============================================================================

// DefaultServerPort is the sidecar's listen port. 8189 sits next to the
// ComfyUI host default (8188) without colliding with it.
const DefaultServerPort = 8189

// DefaultReadTimeout for the HTTP server.
const DefaultReadTimeout = 15 * time.Second

// DefaultWriteTimeout for the HTTP server.
const DefaultWriteTimeout = 15 * time.Second

// DefaultIdleTimeout for the HTTP server.
const DefaultIdleTimeout = 60 * time.Second

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// =============================================================================
// HARDWARE PROBING
// =============================================================================

// DefaultProbeTimeout bounds each external hardware probe command.
const DefaultProbeTimeout = 5 * time.Second

// =============================================================================
// LEDGER
// =============================================================================

// DefaultInitialCredits is the starting balance when no persisted record
// exists.
const DefaultInitialCredits = 80.0

// DefaultSaveInterval is the minimum gap between opportunistic ledger
// writes. Explicit resets and overrides bypass it.
const DefaultSaveInterval = 10 * time.Second

// =============================================================================
// PATHS AND LOGGING
// =============================================================================

// DefaultDataDir holds the persisted JSON records.
const DefaultDataDir = "./data"

// DefaultLogLevel for zerolog.
const DefaultLogLevel = "info"
