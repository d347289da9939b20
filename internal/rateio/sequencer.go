package rateio

import "sync"

// Sequencer tracks the week a tenant last asked for and orders concurrent computations.
// A computation takes a ticket before fetching its inputs; once a newer ticket
// is issued the older result is stale.
type Sequencer struct {
	mu     sync.Mutex
	issued uint64
	week   *Week
}

// Begin records week as the requested one and returns the ticket of a new computation
func (s *Sequencer) Begin(week Week) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.week = &week
	return s.issued
}

// Current reports whether ticket is still the newest one
func (s *Sequencer) Current(ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ticket == s.issued
}

// Week returns the most recently requested week
func (s *Sequencer) Week() (Week, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.week == nil {
		return Week{}, false
	}
	return *s.week, true
}
