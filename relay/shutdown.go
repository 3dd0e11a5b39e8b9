package relay

import "sync/atomic"

// Shutdown is a one-way stop signal shared by both workers. Once set it stays
// set.
type Shutdown struct {
	done atomic.Bool
	c    chan struct{}
}

func NewShutdown() *Shutdown {
	return &Shutdown{c: make(chan struct{})}
}

// Set is safe to call from any goroutine, any number of times.
func (s *Shutdown) Set() {
	if s.done.CompareAndSwap(false, true) {
		close(s.c)
	}
}

func (s *Shutdown) Done() bool { return s.done.Load() }

// C is closed once Set has been called.
func (s *Shutdown) C() <-chan struct{} { return s.c }
