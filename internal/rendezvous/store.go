package rendezvous

import (
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"pylon/internal/domain"
)

var (
	errNotFound = errors.New("not found")
	errCrowded  = errors.New("crowded")
)

// signal is a broadcast channel that is closed and replaced on every change.
type signal struct {
	ch chan struct{}
}

func newSignal() signal { return signal{ch: make(chan struct{})} }

func (s *signal) fire() {
	close(s.ch)
	s.ch = make(chan struct{})
}

type nameplateKey struct {
	app string
	id  domain.Nameplate
}

type nameplate struct {
	sides   map[domain.Side]struct{}
	expires time.Time
}

type meeting struct {
	bodies    map[domain.Side][]byte
	delivered map[domain.Side]struct{}
	expires   time.Time
	changed   signal
}

type mailbox struct {
	sides   map[domain.Side]struct{}
	closed  map[domain.Side]struct{}
	msgs    []domain.MailboxMessage
	last    int
	expires time.Time
	changed signal
}

// memoryStore holds all rendezvous state. Every entry has a deadline that
// is pushed forward on activity and enforced by sweep.
type memoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	nameplateTTL time.Duration
	meetingTTL   time.Duration
	mailboxTTL   time.Duration

	nameplates map[nameplateKey]*nameplate
	meetings   map[string]*meeting
	mailboxes  map[string]*mailbox
}

func newMemoryStore(now func() time.Time, nameplateTTL, mailboxTTL time.Duration) *memoryStore {
	return &memoryStore{
		now:          now,
		nameplateTTL: nameplateTTL,
		meetingTTL:   nameplateTTL,
		mailboxTTL:   mailboxTTL,
		nameplates:   make(map[nameplateKey]*nameplate),
		meetings:     make(map[string]*meeting),
		mailboxes:    make(map[string]*mailbox),
	}
}

// allocate reserves the lowest free nameplate for app and claims it for side.
func (s *memoryStore) allocate(app string, side domain.Side) domain.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var key nameplateKey
	for n := 1; ; n++ {
		key = nameplateKey{app: app, id: domain.Nameplate(strconv.Itoa(n))}
		if _, taken := s.nameplates[key]; !taken {
			break
		}
	}
	np := &nameplate{
		sides:   map[domain.Side]struct{}{side: {}},
		expires: s.now().Add(s.nameplateTTL),
	}
	s.nameplates[key] = np
	return domain.Allocation{Nameplate: key.id, ExpiresAt: np.expires}
}

func (s *memoryStore) claim(app string, id domain.Nameplate, side domain.Side) (domain.ClaimStatus, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	np, ok := s.nameplates[nameplateKey{app: app, id: id}]
	if !ok {
		return "", time.Time{}, errNotFound
	}
	if _, ok := np.sides[side]; !ok {
		if len(np.sides) >= 2 {
			return "", time.Time{}, errCrowded
		}
		np.sides[side] = struct{}{}
	}
	np.expires = s.now().Add(s.nameplateTTL)
	if len(np.sides) == 2 {
		return domain.ClaimPaired, np.expires, nil
	}
	return domain.ClaimWaiting, np.expires, nil
}

// release drops side from the nameplate. The nameplate is freed for reuse
// once no side holds it. Releasing an unknown nameplate is a no-op.
func (s *memoryStore) release(app string, id domain.Nameplate, side domain.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameplateKey{app: app, id: id}
	np, ok := s.nameplates[key]
	if !ok {
		return
	}
	delete(np.sides, side)
	if len(np.sides) == 0 {
		delete(s.nameplates, key)
	}
}

// exchange records side's body for the meeting and returns the peer's body
// if it has arrived, together with a channel that is closed on the next
// change. Reposting the same side keeps its first body. A meeting is
// dropped once each side has been handed the other's body, so a reused
// nameplate starts from a clean meeting.
func (s *memoryStore) exchange(app, id string, side domain.Side, body []byte) ([]byte, <-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := app + "\x00" + id
	m, ok := s.meetings[key]
	if !ok {
		m = &meeting{
			bodies:    make(map[domain.Side][]byte),
			delivered: make(map[domain.Side]struct{}),
			changed:   newSignal(),
		}
		s.meetings[key] = m
	}
	if _, ok := m.bodies[side]; !ok {
		if len(m.bodies) >= 2 {
			return nil, nil, errCrowded
		}
		m.bodies[side] = append([]byte(nil), body...)
		m.changed.fire()
	}
	m.expires = s.now().Add(s.meetingTTL)

	for other, b := range m.bodies {
		if other != side {
			m.delivered[side] = struct{}{}
			if len(m.delivered) == 2 {
				delete(s.meetings, key)
			}
			return b, m.changed.ch, nil
		}
	}
	return nil, m.changed.ch, nil
}

func (s *memoryStore) openMailbox(id string, side domain.Side) (*mailbox, error) {
	mb, ok := s.mailboxes[id]
	if !ok {
		mb = &mailbox{
			sides:   make(map[domain.Side]struct{}),
			closed:  make(map[domain.Side]struct{}),
			changed: newSignal(),
		}
		s.mailboxes[id] = mb
		openMailboxes.Inc()
	}
	if _, ok := mb.sides[side]; !ok {
		if len(mb.sides) >= 2 {
			return nil, errCrowded
		}
		mb.sides[side] = struct{}{}
	}
	mb.expires = s.now().Add(s.mailboxTTL)
	return mb, nil
}

func (s *memoryStore) post(id string, side domain.Side, phase string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, err := s.openMailbox(id, side)
	if err != nil {
		return err
	}
	mb.last++
	mb.msgs = append(mb.msgs, domain.MailboxMessage{
		Index: mb.last,
		Side:  side,
		Phase: phase,
		Body:  append([]byte(nil), body...),
	})
	mb.changed.fire()
	return nil
}

// fetch returns the messages written by the other side with an index
// greater than after, and a channel closed on the next change. Fetching
// with after acknowledges the other side's messages up to after, which
// are dropped.
func (s *memoryStore) fetch(id string, side domain.Side, after int) ([]domain.MailboxMessage, <-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, err := s.openMailbox(id, side)
	if err != nil {
		return nil, nil, err
	}
	mb.msgs = slices.DeleteFunc(mb.msgs, func(m domain.MailboxMessage) bool {
		return m.Side != side && m.Index <= after
	})
	out := []domain.MailboxMessage{}
	for _, m := range mb.msgs {
		if m.Index > after && m.Side != side {
			out = append(out, m)
		}
	}
	return out, mb.changed.ch, nil
}

// close marks side as done with the mailbox. The mailbox is dropped once
// both sides have joined and closed; until then it keeps its messages for
// a peer that has not arrived yet, and sweep expires it.
func (s *memoryStore) close(id string, side domain.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.mailboxes[id]
	if !ok {
		return
	}
	mb.closed[side] = struct{}{}
	if len(mb.sides) < 2 {
		return
	}
	for sd := range mb.sides {
		if _, ok := mb.closed[sd]; !ok {
			return
		}
	}
	delete(s.mailboxes, id)
	openMailboxes.Dec()
}

// sweep drops every expired entry and returns how many were dropped.
func (s *memoryStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for k, np := range s.nameplates {
		if now.After(np.expires) {
			delete(s.nameplates, k)
			expired.WithLabelValues("nameplate").Inc()
			n++
		}
	}
	for k, m := range s.meetings {
		if now.After(m.expires) {
			delete(s.meetings, k)
			expired.WithLabelValues("meeting").Inc()
			n++
		}
	}
	for k, mb := range s.mailboxes {
		if now.After(mb.expires) {
			delete(s.mailboxes, k)
			openMailboxes.Dec()
			expired.WithLabelValues("mailbox").Inc()
			n++
		}
	}
	return n
}
