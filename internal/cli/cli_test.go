package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestIsUsageError(t *testing.T) {
	for _, msg := range []string{
		"unknown flag: --nope",
		"unknown shorthand flag: 'x' in -x",
		"flag needs an argument: --config",
		`unknown command "sned" for "pylon"`,
		`invalid argument "x" for "-n, --code-length" flag: strconv.ParseInt: parsing "x": invalid syntax`,
		`required flag(s) "listen" not set`,
		"accepts 1 arg(s), received 0",
		"accepts at most 1 arg(s), received 2",
		"failed to load config file (x.toml): boom",
	} {
		require.True(t, IsUsageError(errors.New(msg)), msg)
	}

	for _, msg := range []string{
		"connection refused",
		"transfer failed: the receiver accepts only small files",
		"open x: invalid argument",
		fmt.Sprintf("wrapped: %v", errors.New("unknown flag: --nope")),
	} {
		require.False(t, IsUsageError(errors.New(msg)), msg)
	}
}

func TestErrorHandlerWritesUsageToErrorStream(t *testing.T) {
	cmd := &cobra.Command{Use: "demo <file>", Short: "demo command", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().Bool("loud", false, "be loud")
	var stdout, w bytes.Buffer
	cmd.SetOut(&stdout)

	ErrorHandler(cmd)(&w, fang.Styles{}, errors.New("accepts 1 arg(s), received 0"))
	require.Contains(t, w.String(), "accepts 1 arg(s), received 0.")
	require.Contains(t, w.String(), "Usage:")
	require.Contains(t, w.String(), "--loud")
	require.Empty(t, stdout.String())

	w.Reset()
	ErrorHandler(cmd)(&w, fang.Styles{}, errors.New("connection refused"))
	require.Contains(t, w.String(), "connection refused.")
	require.NotContains(t, w.String(), "Usage:")
}
