package commands

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pylon/internal/domain"
	"pylon/internal/services/transfer"
)

func TestWarnUnknownWords(t *testing.T) {
	var buf bytes.Buffer
	warnUnknownWords(&buf, "7-notaword-zzzz")
	require.Contains(t, buf.String(), `"notaword"`)

	buf.Reset()
	warnUnknownWords(&buf, "not a code")
	require.Empty(t, buf.String())
}

func TestConfirm(t *testing.T) {
	var buf bytes.Buffer
	require.True(t, confirm(&buf, bufio.NewReader(strings.NewReader("Y\n")), "? "))
	require.False(t, confirm(&buf, bufio.NewReader(strings.NewReader("\n")), "? "))
	require.False(t, confirm(&buf, bufio.NewReader(strings.NewReader("")), "? "))
	require.Equal(t, "? ? ? ", buf.String())
}

func TestRenderProgressDrainsWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := transfer.NewProgress()
	done := renderProgress(&buf, p)
	p.Close()
	<-done
	require.Empty(t, buf.String())
}

func TestPercent(t *testing.T) {
	require.Equal(t, int64(100), percent(transfer.Update{}))
	require.Equal(t, int64(50), percent(transfer.Update{Done: 5, Total: 10}))
}

func TestSessionOptions(t *testing.T) {
	require.Nil(t, sessionOptions(false))
	require.Len(t, sessionOptions(true), 1)
}

func TestRootFlags(t *testing.T) {
	root := newRoot()
	for _, name := range []string{"config", "app-id", "rendezvous", "relay", "log-level", "log-file"} {
		require.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	send, _, err := root.Find([]string{"send"})
	require.NoError(t, err)
	require.NotNil(t, send.Flags().Lookup("code-length"))
	recv, _, err := root.Find([]string{"recv"})
	require.NoError(t, err)
	require.Equal(t, "receive [code]", recv.Use)
}

func TestRelayHint(t *testing.T) {
	relayErr := domain.TransferError(fmt.Errorf("%w: tcp:relay:1: refused", transfer.ErrRelayUnavailable))
	err := relayHint(relayErr)
	require.ErrorIs(t, err, transfer.ErrRelayUnavailable)
	require.ErrorIs(t, err, domain.ErrTransfer)
	require.Contains(t, err.Error(), "--mailbox-only")

	other := errors.New("boom")
	require.Equal(t, other, relayHint(other))
	require.NoError(t, relayHint(nil))
}
