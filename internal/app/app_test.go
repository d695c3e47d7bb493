package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pylon/internal/config"
	"pylon/internal/services/session"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(config.EnvAppID, "")
	t.Setenv(config.EnvRendezvousURL, "")
	t.Setenv(config.EnvRelayURL, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFile, "")

	f, err := LoadConfig("", Overrides{})
	require.NoError(t, err)
	require.Equal(t, config.DefaultFile(), f)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pylon.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[session]
app_id = "from-file"
relay_url = "tcp:file.example:1"

[logging]
level = "DEBUG"
`), 0o600))

	t.Setenv(config.EnvAppID, "")
	t.Setenv(config.EnvRendezvousURL, "")
	t.Setenv(config.EnvRelayURL, "tcp:env.example:2")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFile, "")

	f, err := LoadConfig(path, Overrides{RendezvousURL: "http://flag.example/v1"})
	require.NoError(t, err)
	require.Equal(t, "from-file", f.Session.AppID)
	require.Equal(t, "tcp:env.example:2", f.Session.RelayURL)
	require.Equal(t, "http://flag.example/v1", f.Session.RendezvousURL)
	require.Equal(t, "DEBUG", f.Logging.Level)

	f, err = LoadConfig(path, Overrides{RelayURL: "tcp:flag.example:3", LogLevel: "ERROR"})
	require.NoError(t, err)
	require.Equal(t, "tcp:flag.example:3", f.Session.RelayURL)
	require.Equal(t, "ERROR", f.Logging.Level)
}

func TestLoadConfigRejectsBadRendezvous(t *testing.T) {
	_, err := LoadConfig("", Overrides{RendezvousURL: "not a url"})
	require.Error(t, err)
}

func TestNewWire(t *testing.T) {
	f := config.DefaultFile()
	f.Logging.Disable = true
	w, err := NewWire(Config{File: f})
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, config.Default(), w.Config)
	require.Equal(t, config.DefaultAppID, w.Rendezvous.AppID)

	s := w.NewSession()
	require.IsType(t, session.StateIdle{}, s.State())
	require.Equal(t, config.Default(), s.Config())
}
