package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/op/go-logging.v1"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]logging.Level{
		"error":   logging.ERROR,
		"WARN":    logging.WARNING,
		"warning": logging.WARNING,
		"notice":  logging.NOTICE,
		"":        logging.INFO,
		" debug ": logging.DEBUG,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("chatty")
	require.Error(t, err)
}

func TestBackendWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pylon.log")
	b, err := New(path, "DEBUG", false)
	require.NoError(t, err)

	l := b.GetLogger("pylon/test")
	l.Debugf("hello %s", "file")
	require.NoError(t, b.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), "pylon/test: hello file"))
}

func TestBackendFiltersByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pylon.log")
	b, err := New(path, "ERROR", false)
	require.NoError(t, err)

	l := b.GetLogger("pylon/quiet")
	l.Info("dropped")
	l.Error("kept")
	require.NoError(t, b.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "dropped")
	require.Contains(t, string(raw), "kept")
}

func TestDiscard(t *testing.T) {
	l := Discard("pylon/discard")
	require.NotNil(t, l)
	l.Error("goes nowhere")
}
