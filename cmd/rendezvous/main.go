package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"pylon/internal/cli"
	"pylon/internal/log"
	"pylon/internal/rendezvous"
)

type flags struct {
	listen     string
	metrics    string
	logLevel   string
	wait       time.Duration
	sweep      time.Duration
	allocRate  float64
	allocBurst int
}

func newRoot() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:          "rendezvous",
		Short:        "Run the pylon rendezvous service",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.listen, "listen", "l", ":4000", "HTTP listen address")
	fl.StringVar(&f.metrics, "metrics", "", "Prometheus listen address (disabled when empty)")
	fl.StringVar(&f.logLevel, "log-level", "NOTICE", "log level")
	fl.DurationVar(&f.wait, "wait", 25*time.Second, "longest a poll is held open")
	fl.DurationVar(&f.sweep, "sweep", time.Minute, "interval between expiry sweeps")
	fl.Float64Var(&f.allocRate, "alloc-rate", 5, "nameplate allocations per second")
	fl.IntVar(&f.allocBurst, "alloc-burst", 20, "nameplate allocation burst")
	return cmd
}

func run(ctx context.Context, f flags) error {
	backend, err := log.New("", f.logLevel, false)
	if err != nil {
		return err
	}
	defer backend.Close()
	l := backend.GetLogger("rendezvous")

	srv := rendezvous.NewServer(
		rendezvous.WithLogger(l),
		rendezvous.WithWait(f.wait),
		rendezvous.WithAllocationLimit(rate.Limit(f.allocRate), f.allocBurst),
	)
	go srv.Run(ctx, f.sweep)
	cli.ServeMetrics(ctx, f.metrics, backend.GetLogger("metrics"))

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", srv))
	hs := &http.Server{
		Addr:              f.listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	l.Noticef("Rendezvous listening on %s", f.listen)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	l.Notice("Rendezvous stopped")
	return nil
}

func main() {
	if err := cli.Execute(newRoot()); err != nil {
		os.Exit(1)
	}
}
