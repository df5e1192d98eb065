package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_EnvWins(t *testing.T) {
	t.Setenv(EnvTokenID, "tok_env")

	src := ModalSource{ConfigPath: "/nonexistent"}
	assert.Equal(t, "tok_env", src.Token())
}

func TestToken_ConfigFileFallback(t *testing.T) {
	t.Setenv(EnvTokenID, "")

	path := filepath.Join(t.TempDir(), "modal.toml")
	content := "[default]\nactive = true\ntoken_id = \"tok_file\"\ntoken_secret = \"sek\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	src := ModalSource{ConfigPath: path}
	assert.Equal(t, "tok_file", src.Token())
}

func TestToken_SingleQuotedValue(t *testing.T) {
	t.Setenv(EnvTokenID, "")

	path := filepath.Join(t.TempDir(), "modal.toml")
	require.NoError(t, os.WriteFile(path, []byte("token_id = 'tok_sq'\n"), 0o600))

	assert.Equal(t, "tok_sq", ModalSource{ConfigPath: path}.Token())
}

func TestToken_Unavailable(t *testing.T) {
	t.Setenv(EnvTokenID, "")

	src := ModalSource{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")}
	assert.Equal(t, "", src.Token())
}

func TestToken_ConfigWithoutTokenID(t *testing.T) {
	t.Setenv(EnvTokenID, "")

	path := filepath.Join(t.TempDir(), "modal.toml")
	require.NoError(t, os.WriteFile(path, []byte("[default]\nactive = true\n"), 0o600))

	assert.Equal(t, "", ModalSource{ConfigPath: path}.Token())
}

func TestStaticSource(t *testing.T) {
	assert.Equal(t, "tok_x", StaticSource("tok_x").Token())
}
