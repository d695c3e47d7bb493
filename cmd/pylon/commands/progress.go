package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"pylon/internal/services/transfer"
)

// renderProgress drains p and, on a terminal, redraws one status line per
// update. The returned channel closes once p is closed.
func renderProgress(w io.Writer, p *transfer.Progress) <-chan struct{} {
	done := make(chan struct{})
	tty := isTerminal(w)
	go func() {
		defer close(done)
		drawn := false
		for u := range p.C() {
			if !tty {
				continue
			}
			fmt.Fprintf(w, "\r%s / %s (%d%%)   ", humanize.Bytes(uint64(u.Done)), humanize.Bytes(uint64(u.Total)), percent(u))
			drawn = true
		}
		if drawn {
			fmt.Fprintln(w)
		}
	}()
	return done
}

func percent(u transfer.Update) int64 {
	if u.Total <= 0 {
		return 100
	}
	return u.Done * 100 / u.Total
}
