package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pylon/internal/protocol/code"
	"pylon/internal/services/transfer"
	"pylon/internal/store"
)

// receive [code]: join the sender's code and save the offered file.
func receiveCmd() *cobra.Command {
	var (
		outputDir   string
		force       bool
		yes         bool
		mailboxOnly bool
	)
	cmd := &cobra.Command{
		Use:     "receive [code]",
		Aliases: []string{"recv"},
		Short:   "Receive a file using the code the sender printed",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()
			in := bufio.NewReader(cmd.InOrStdin())

			var typed string
			if len(args) == 1 {
				typed = args[0]
			} else {
				fmt.Fprint(stderr, "Enter code: ")
				line, err := in.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading code: %w", err)
				}
				typed = line
			}
			warnUnknownWords(stderr, typed)

			s := wire.NewSession(sessionOptions(mailboxOnly)...)
			defer s.Destroy()

			if err := s.EnterCode(ctx, typed); err != nil {
				return err
			}
			if err := s.AwaitConnected(ctx); err != nil {
				return err
			}
			verifier, err := s.Verifier()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Connected. Verifier: %s\n", verifier)

			if err := s.RequestFile(ctx); err != nil {
				return err
			}
			offer := s.Offer()
			if offer == nil {
				fmt.Fprintln(out, "The sender closed without offering a file")
				return nil
			}
			fmt.Fprintf(out, "Offered %s (%s) via %s\n", offer.Name, humanize.Bytes(uint64(offer.Size)), offer.Path())

			if !yes && isTerminal(cmd.InOrStdin()) && !confirm(stderr, in, "Accept? [y/N] ") {
				return offer.Reject(ctx, "declined by the receiver")
			}

			sink, err := store.Create(outputDir, offer.Name, force)
			if err != nil {
				_ = offer.Reject(ctx, "cannot write the file")
				return err
			}

			progress := transfer.NewProgress()
			done := renderProgress(stderr, progress)
			err = offer.Accept(ctx, sink, progress)
			<-done
			if err != nil {
				_ = sink.Abort()
				return relayHint(err)
			}
			if err := sink.Commit(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Received %s\n", sink.Path())
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory to save the file in")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "accept the offer without asking")
	cmd.Flags().BoolVar(&mailboxOnly, "mailbox-only", false, "never use the transit relay")
	return cmd
}

// warnUnknownWords flags code words outside the word list; they are
// usually typos and make the handshake fail.
func warnUnknownWords(w io.Writer, typed string) {
	_, words, err := code.Parse(code.Normalize(typed))
	if err != nil {
		return
	}
	for _, word := range words {
		if !code.IsWord(word) {
			fmt.Fprintf(w, "warning: %q is not in the word list\n", word)
		}
	}
}

func confirm(w io.Writer, in *bufio.Reader, prompt string) bool {
	fmt.Fprint(w, prompt)
	line, _ := in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
