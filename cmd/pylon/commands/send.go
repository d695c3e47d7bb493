package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/katzenpost/qrterminal"
	"github.com/spf13/cobra"

	"pylon/internal/services/transfer"
)

// send <file>: print a code, wait for the peer and stream the file.
func sendCmd() *cobra.Command {
	var (
		length      int
		showQR      bool
		mailboxOnly bool
	)
	cmd := &cobra.Command{
		Use:   "send <file>",
		Short: "Send a file to whoever enters the printed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			path := args[0]
			fi, err := os.Stat(path)
			if err != nil {
				return err
			}
			if !fi.Mode().IsRegular() {
				return fmt.Errorf("%s is not a regular file", path)
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			name := filepath.Base(path)

			s := wire.NewSession(sessionOptions(mailboxOnly)...)
			defer s.Destroy()

			code, err := s.GenerateCode(ctx, length)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Sending %s (%s)\n", name, humanize.Bytes(uint64(fi.Size())))
			fmt.Fprintf(out, "On the other computer, run:\n\n    pylon receive %s\n\n", code)
			if showQR {
				printQR(out, code)
			}

			if err := s.AwaitConnected(ctx); err != nil {
				return err
			}
			verifier, err := s.Verifier()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Connected. Verifier: %s\n", verifier)

			progress := transfer.NewProgress()
			done := renderProgress(cmd.ErrOrStderr(), progress)
			err = s.SendFile(ctx, f, name, fi.Size(), progress)
			<-done
			if err != nil {
				return relayHint(err)
			}
			fmt.Fprintf(out, "Sent %s\n", name)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "code-length", "n", 2, "number of words in the code")
	cmd.Flags().BoolVar(&showQR, "qr", false, "also print the code as a QR code")
	cmd.Flags().BoolVar(&mailboxOnly, "mailbox-only", false, "never use the transit relay")
	return cmd
}

func printQR(w io.Writer, code string) {
	qrterminal.GenerateWithConfig(code, qrterminal.Config{
		Level:      qrterminal.L,
		Writer:     w,
		HalfBlocks: true,
		QuietZone:  1,
	})
	fmt.Fprintln(w)
}
