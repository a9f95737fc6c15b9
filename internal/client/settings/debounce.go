package settings

import (
	"context"
	"time"
)

// dueHook runs after a timer has claimed its term and before the term is
// written. Tests replace it.
var dueHook = func() {}

type pendingTerm struct {
	value string
	timer *time.Timer
}

// SetSearchTermAfter stores value as the search term of page once delay has
// passed without another call for the same page. Each call supersedes the
// previous pending value. A non-positive delay, or a closed store, applies
// the value at once.
func (s *Store) SetSearchTermAfter(ctx context.Context, page, value string, delay time.Duration) {
	s.dmu.Lock()
	if s.closed || delay <= 0 {
		s.dmu.Unlock()
		s.SetSearchTerm(ctx, page, value)
		return
	}

	if prev := s.pending[page]; prev != nil {
		prev.timer.Stop()
	}

	p := &pendingTerm{value: value}
	ctx = context.WithoutCancel(ctx)
	// The term is written under dmu so that a reset either cancels it or
	// runs after the write.
	p.timer = time.AfterFunc(delay, func() {
		s.dmu.Lock()
		defer s.dmu.Unlock()
		if s.pending[page] != p {
			// superseded, flushed or cancelled
			return
		}
		delete(s.pending, page)
		dueHook()
		s.SetSearchTerm(ctx, page, p.value)
	})
	s.pending[page] = p
	s.dmu.Unlock()
}

// PendingSearchTerm returns the value waiting to be applied for page.
func (s *Store) PendingSearchTerm(page string) (string, bool) {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	p, ok := s.pending[page]
	if !ok {
		return "", false
	}
	return p.value, true
}

// Flush applies every pending search term now.
func (s *Store) Flush(ctx context.Context) {
	s.dmu.Lock()
	defer s.dmu.Unlock()

	for page, p := range s.pending {
		p.timer.Stop()
		s.SetSearchTerm(ctx, page, p.value)
	}
	s.pending = make(map[string]*pendingTerm)
}

// Close flushes pending terms. Later SetSearchTermAfter calls apply
// immediately.
func (s *Store) Close(ctx context.Context) {
	s.dmu.Lock()
	s.closed = true
	s.dmu.Unlock()

	s.Flush(ctx)
}

func (s *Store) cancelPending() {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	for _, p := range s.pending {
		p.timer.Stop()
	}
	s.pending = make(map[string]*pendingTerm)
}

func (s *Store) cancelPendingPage(page string) {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	if p := s.pending[page]; p != nil {
		p.timer.Stop()
		delete(s.pending, page)
	}
}
