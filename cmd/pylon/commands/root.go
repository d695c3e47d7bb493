package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pylon/internal/app"
	"pylon/internal/cli"
	"pylon/internal/services/session"
	"pylon/internal/services/transfer"
)

var (
	configPath string
	overrides  app.Overrides
	wire       *app.Wire
)

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "pylon",
		Short:        "Send a file to a peer using a short one-time code",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.LoadConfig(configPath, overrides)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(app.Config{File: f})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "TOML config file (default: built-in settings)")
	pf.StringVar(&overrides.AppID, "app-id", "", "application id shared with the peer")
	pf.StringVar(&overrides.RendezvousURL, "rendezvous", "", "rendezvous service base URL")
	pf.StringVar(&overrides.RelayURL, "relay", "", "transit relay hint, e.g. tcp:host:port")
	pf.StringVar(&overrides.LogLevel, "log-level", "", "log level (ERROR, WARNING, NOTICE, INFO, DEBUG)")
	pf.StringVar(&overrides.LogFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(sendCmd(), receiveCmd(), versionCmd())
	return root
}

// Execute runs the pylon CLI.
func Execute() error {
	return cli.Execute(newRoot())
}

// sessionOptions restricts the transit abilities when mailboxOnly is set.
func sessionOptions(mailboxOnly bool) []session.Option {
	if !mailboxOnly {
		return nil
	}
	return []session.Option{
		session.WithTransferOptions(transfer.WithAbilities(
			transfer.AbilityMailbox,
			transfer.AbilityZstd,
			transfer.AbilityLZ4,
		)),
	}
}

// relayHint points the user at --mailbox-only when the relay failed.
func relayHint(err error) error {
	if errors.Is(err, transfer.ErrRelayUnavailable) {
		return fmt.Errorf("%w (retry with --mailbox-only on both ends)", err)
	}
	return err
}
