package visibility

import "sync"

// Signal carries the page-visibility boolean the dashboard session reports:
// true while the student can actually see the page. Subscriptions return a
// disposer so owners can deterministically unhook during shutdown instead of
// relying on teardown ordering.
type Signal struct {
	mu      sync.Mutex
	visible bool
	nextID  int
	subs    map[int]func(visible bool)
}

// NewSignal constructs a signal in the given initial state.
func NewSignal(visible bool) *Signal {
	return &Signal{
		visible: visible,
		subs:    make(map[int]func(bool)),
	}
}

// Visible reports the current state.
func (s *Signal) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Set updates the state and notifies subscribers. Setting the current value
// again is a no-op.
func (s *Signal) Set(visible bool) {
	s.mu.Lock()
	if s.visible == visible {
		s.mu.Unlock()
		return
	}
	s.visible = visible
	subs := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(visible)
	}
}

// Subscribe registers fn for state changes and returns its disposer.
func (s *Signal) Subscribe(fn func(visible bool)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
