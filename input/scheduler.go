package input

import (
	"sort"
	"time"
)

// Handle identifies a scheduled callback. Handles are never reused.
type Handle uint64

type timer struct {
	handle Handle
	due    time.Duration
	fn     func()
}

// Scheduler runs delayed callbacks against a clock advanced by the frame driver.
// It is single-threaded: callbacks run inside Advance on the caller's goroutine.
type Scheduler struct {
	now     time.Duration
	next    Handle
	pending map[Handle]*timer
	due     []*timer
}

// NewScheduler creates a scheduler with its clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[Handle]*timer)}
}

// Now returns the scheduler clock.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once the clock has advanced by delay.
func (s *Scheduler) After(delay time.Duration, fn func()) Handle {
	s.next++
	h := s.next
	s.pending[h] = &timer{handle: h, due: s.now + delay, fn: fn}
	return h
}

// Cancel removes a pending callback. It returns false if the callback
// already ran, was already cancelled, or never existed.
func (s *Scheduler) Cancel(h Handle) bool {
	if _, ok := s.pending[h]; !ok {
		return false
	}
	delete(s.pending, h)
	return true
}

// Pending reports whether h is still scheduled.
func (s *Scheduler) Pending(h Handle) bool {
	_, ok := s.pending[h]
	return ok
}

// Len returns the number of pending callbacks.
func (s *Scheduler) Len() int {
	return len(s.pending)
}

// Advance moves the clock forward by dt and runs every callback now due,
// ordered by due time then scheduling order. A callback cancelled by an
// earlier one in the same batch does not run. Callbacks scheduled during
// Advance run on a later call at the earliest.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt > 0 {
		s.now += dt
	}

	s.due = s.due[:0]
	for _, t := range s.pending {
		if t.due <= s.now {
			s.due = append(s.due, t)
		}
	}
	sort.Slice(s.due, func(i, j int) bool {
		if s.due[i].due != s.due[j].due {
			return s.due[i].due < s.due[j].due
		}
		return s.due[i].handle < s.due[j].handle
	})

	fired := 0
	for _, t := range s.due {
		if _, ok := s.pending[t.handle]; !ok {
			continue
		}
		delete(s.pending, t.handle)
		t.fn()
		fired++
	}
	return fired
}

// Reset cancels everything without running it. The clock keeps its value.
func (s *Scheduler) Reset() {
	clear(s.pending)
}
