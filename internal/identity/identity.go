// Package identity resolves the external billing credential identifier.
//
// The token is opaque and used only to detect account changes between
// sessions, never for authentication. An unavailable token resolves to ""
// which callers must treat as "unknown", not "changed".
package identity

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvTokenID is the environment variable checked first.
const EnvTokenID = "MODAL_TOKEN_ID"

// Source yields the currently active identity token.
type Source interface {
	Token() string
}

// ModalSource reads the token from the environment, falling back to the
// Modal CLI config file (~/.modal.toml), parsed line-by-line for token_id.
type ModalSource struct {
	// ConfigPath overrides the default ~/.modal.toml location (tests).
	ConfigPath string
}

func (s ModalSource) Token() string {
	if tok := strings.TrimSpace(os.Getenv(EnvTokenID)); tok != "" {
		return tok
	}
	return tokenFromConfig(s.configPath())
}

func (s ModalSource) configPath() string {
	if s.ConfigPath != "" {
		return s.ConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".modal.toml")
}

func tokenFromConfig(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, "token_id") {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return ""
}

// StaticSource returns a fixed token, for tests.
type StaticSource string

func (s StaticSource) Token() string { return string(s) }
