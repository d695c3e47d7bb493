package transfer

import "sync"

// Update is a progress report: Done of Total bytes have moved.
type Update struct {
	Done  int64
	Total int64
}

// Progress is a stream of updates for one transfer. It holds at most one
// unread update; a newer update replaces an unread older one, so reporting
// never blocks the transfer. Updates are non-decreasing. The channel is
// closed when the transfer ends, right after the final update.
//
// A nil *Progress is valid and discards everything.
type Progress struct {
	mu     sync.Mutex
	c      chan Update
	last   Update
	closed bool
}

// NewProgress returns an empty stream.
func NewProgress() *Progress {
	return &Progress{c: make(chan Update, 1)}
}

// C returns the update channel.
func (p *Progress) C() <-chan Update {
	if p == nil {
		return nil
	}
	return p.c
}

// Last returns the most recent update, read or not.
func (p *Progress) Last() Update {
	if p == nil {
		return Update{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Progress) report(done, total int64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || done < p.last.Done {
		return
	}
	p.last = Update{Done: done, Total: total}
	select {
	case <-p.c:
	default:
	}
	p.c <- p.last
}

// Close ends the stream. Later reports are dropped. Transfers close their
// stream themselves; Close is for callers that never start one.
func (p *Progress) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.c)
	}
}
