package main

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pylon/internal/cli"
	"pylon/internal/log"
	"pylon/internal/transitrelay"
)

type flags struct {
	listen           string
	metrics          string
	logLevel         string
	handshakeTimeout time.Duration
	pairTimeout      time.Duration
}

func newRoot() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          "transit-relay",
		Short:        "Run the pylon transit relay",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.listen, "listen", "l", ":4001", "TCP listen address")
	fl.StringVar(&f.metrics, "metrics", "", "Prometheus listen address (disabled when empty)")
	fl.StringVar(&f.logLevel, "log-level", "NOTICE", "log level")
	fl.DurationVar(&f.handshakeTimeout, "handshake-timeout", 30*time.Second, "time allowed for the request line")
	fl.DurationVar(&f.pairTimeout, "pair-timeout", 2*time.Minute, "how long a side waits for its peer")
	return cmd
}

func run(ctx context.Context, f flags) error {
	backend, err := log.New("", f.logLevel, false)
	if err != nil {
		return err
	}
	defer backend.Close()
	l := backend.GetLogger("transit")

	ln, err := net.Listen("tcp", f.listen)
	if err != nil {
		return err
	}
	cli.ServeMetrics(ctx, f.metrics, backend.GetLogger("metrics"))

	srv := transitrelay.NewServer(
		transitrelay.WithLogger(l),
		transitrelay.WithTimeouts(f.handshakeTimeout, f.pairTimeout),
	)
	l.Noticef("Transit relay listening on %s", ln.Addr())
	return srv.Serve(ctx, ln)
}

func main() {
	if err := cli.Execute(newRoot()); err != nil {
		os.Exit(1)
	}
}
