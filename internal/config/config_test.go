package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pylon.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	require.Equal(t, Default(), Config{}.WithDefaults())
}

func TestFieldsOverrideIndependently(t *testing.T) {
	cfg := Config{RelayURL: "relay.example.org:4000"}.WithDefaults()
	require.Equal(t, DefaultAppID, cfg.AppID)
	require.Equal(t, DefaultRendezvousURL, cfg.RendezvousURL)
	require.Equal(t, "relay.example.org:4000", cfg.RelayURL)
}

func TestValidate(t *testing.T) {
	bad := Default()
	bad.AppID = "  "
	require.ErrorIs(t, bad.Validate(), ErrEmptyAppID)

	bad = Default()
	bad.RendezvousURL = "ftp://example.org"
	require.ErrorIs(t, bad.Validate(), ErrBadRendezvousURL)

	bad = Default()
	bad.RendezvousURL = "http://"
	require.ErrorIs(t, bad.Validate(), ErrBadRendezvousURL)

	// A broken relay address is a transfer-time error, not a config error.
	ok := Default()
	ok.RelayURL = ""
	require.NoError(t, ok.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[session]
rendezvous_url = "http://127.0.0.1:4000/v1"

[logging]
level = "DEBUG"
`)
	f, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:4000/v1", f.Session.RendezvousURL)
	require.Equal(t, DefaultAppID, f.Session.AppID)
	require.Equal(t, DefaultRelayURL, f.Session.RelayURL)
	require.Equal(t, "DEBUG", f.Logging.Level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[session]
rendezvous = "http://127.0.0.1:4000/v1"
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown keys")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config file")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAppID:    "example.org/other",
		EnvRelayURL: " tcp:relay.example.org:4000 ",
		EnvLogLevel: "debug",
	}
	f := applyEnv(DefaultFile(), func(k string) string { return env[k] })
	require.Equal(t, "example.org/other", f.Session.AppID)
	require.Equal(t, DefaultRendezvousURL, f.Session.RendezvousURL)
	require.Equal(t, "tcp:relay.example.org:4000", f.Session.RelayURL)
	require.Equal(t, "debug", f.Logging.Level)
	require.Empty(t, f.Logging.File)
}
