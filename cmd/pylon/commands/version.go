package commands

import (
	"fmt"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	noop := func(*cobra.Command, []string) error { return nil }
	return &cobra.Command{
		Use:                "version",
		Short:              "Print build information",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  noop,
		PersistentPostRunE: noop,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pylon %s\n", versioninfo.Short())
			fmt.Fprintf(out, "revision:    %s\n", versioninfo.Revision)
			if !versioninfo.LastCommit.IsZero() {
				fmt.Fprintf(out, "last commit: %s\n", versioninfo.LastCommit.Format(time.RFC3339))
			}
			fmt.Fprintf(out, "dirty:       %t\n", versioninfo.DirtyBuild)
			return nil
		},
	}
}
