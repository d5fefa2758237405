// FILE: lixenwraith/logship/scheduler.go
package logship

import (
	"sync"
	"time"
)

// stopper is the part of *time.Timer the scheduler needs
type stopper interface {
	Stop() bool
}

// afterFunc starts a one-shot timer, replaceable in tests
type afterFunc func(d time.Duration, f func()) stopper

func systemAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// scheduler owns the single deferred flush timer of a logger.
// It is idle when timer is nil and armed otherwise, the flushing state is
// owned by the executor and consulted through isFlushing.
type scheduler struct {
	mu    sync.Mutex
	timer stopper
	gen   uint64 // Incremented on every arm and cancel, stale firings compare against it

	delay      time.Duration
	threshold  int
	after      afterFunc
	isFlushing func() bool
	flushNow   func() // Hands an opportunistic flush to the background
	armed      func() // Counts armed timers
}

// onAppend applies the size and time triggers after a record was appended
func (s *scheduler) onAppend(size int) {
	if size >= s.threshold {
		// A size-triggered flush resets the pending deferred one, the new
		// timer retries whatever the flush fails to deliver
		if s.cancel() {
			s.arm()
		}
		s.flushNow()
		return
	}
	s.arm()
}

// arm starts the deferred flush timer when idle.
// It returns false when a timer is already pending or a send is in flight.
func (s *scheduler) arm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil || s.isFlushing() {
		return false
	}

	s.gen++
	gen := s.gen
	s.timer = s.after(s.delay, func() { s.fire(gen) })
	if s.armed != nil {
		s.armed()
	}
	return true
}

// fire handles timer expiry: armed -> idle, then flush
func (s *scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.timer == nil || s.gen != gen {
		// Cancelled after the timer had already started running
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	s.flushNow()
}

// cancel stops a pending timer, reporting whether one was armed
func (s *scheduler) cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}

// isArmed reports whether a deferred flush is pending
func (s *scheduler) isArmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
