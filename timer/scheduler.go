// Package timer schedules callbacks against the simulated game clock.
package timer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
)

// ErrInvalidArgument is returned when a registration time or interval is rejected.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrCallbackFailed matches every *CallbackError.
var ErrCallbackFailed = errors.New("timer callback failed")

// Clock reports the current game time in seconds.
type Clock interface {
	Now() float64
}

// Callback is invoked when a scheduled entry comes due.
// Returning cancel=true stops a repeating entry.
type Callback interface {
	Call() (cancel bool, err error)
}

// Func adapts a plain function to Callback.
type Func func() bool

// Call implements Callback.
func (f Func) Call() (bool, error) { return f(), nil }

// CallbackError wraps a failure raised by a fired callback.
type CallbackError struct {
	ID  uint64
	Due float64
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("timer %d (due %.3f): %v", e.ID, e.Due, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCallbackFailed.
func (e *CallbackError) Is(target error) bool { return target == ErrCallbackFailed }

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Pending  int
	Fired    uint64
	Failed   uint64
	Canceled uint64
}

type entry struct {
	id       uint64
	due      float64
	interval float64 // 0 = one-shot
	cb       Callback
	removed  bool
}

// Scheduler owns the pending callbacks. It is not safe for concurrent use:
// registration and Tick must happen on the simulation goroutine.
type Scheduler struct {
	clock   Clock
	logger  *log.Logger
	onError func(*CallbackError)

	entries []*entry
	nextID  uint64
	ticking bool
	dirty   bool // tombstones awaiting compaction

	fired    uint64
	failed   uint64
	canceled uint64
}

// NewScheduler creates a scheduler that reads registration time from clock.
// A nil logger discards output.
func NewScheduler(clock Clock, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{
		clock:  clock,
		logger: logger,
	}
}

// SetErrorHandler replaces the default handler, which logs the failure.
func (s *Scheduler) SetErrorHandler(fn func(*CallbackError)) {
	s.onError = fn
}

// ScheduleOnce registers cb to fire once at the absolute game time due.
func (s *Scheduler) ScheduleOnce(due float64, cb Callback) error {
	if cb == nil {
		return fmt.Errorf("%w: callback is nil", ErrInvalidArgument)
	}
	if math.IsNaN(due) || due <= s.clock.Now() {
		return fmt.Errorf("%w: time is in the past", ErrInvalidArgument)
	}
	s.add(due, 0, cb)
	return nil
}

// ScheduleEvery registers cb to fire every interval seconds, first at now+interval.
func (s *Scheduler) ScheduleEvery(interval float64, cb Callback) error {
	if cb == nil {
		return fmt.Errorf("%w: callback is nil", ErrInvalidArgument)
	}
	if math.IsNaN(interval) || math.IsInf(interval, 0) || interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidArgument)
	}
	s.add(s.clock.Now()+interval, interval, cb)
	return nil
}

func (s *Scheduler) add(due, interval float64, cb Callback) {
	s.nextID++
	s.entries = append(s.entries, &entry{
		id:       s.nextID,
		due:      due,
		interval: interval,
		cb:       cb,
	})
}

// Tick fires every entry due at now. Repeating entries are rearmed at
// now+interval, so a long pause yields a single firing, not a catch-up burst.
// Entries registered by callbacks during this Tick are not visited until the
// next one. Order across entries within a Tick is not guaranteed.
func (s *Scheduler) Tick(now float64) {
	if s.ticking {
		s.logger.Printf("[TIMER] reentrant Tick(%.3f) ignored", now)
		return
	}
	s.ticking = true
	defer func() {
		s.ticking = false
		s.compact()
	}()

	// Snapshot the length; anything appended past n was registered mid-tick.
	n := len(s.entries)
	for i := 0; i < n; i++ {
		e := s.entries[i]
		if e.removed || e.due > now {
			continue
		}

		cancel, err := s.invoke(e)
		s.fired++

		switch {
		case err != nil:
			s.failed++
			s.remove(e)
			s.report(&CallbackError{ID: e.id, Due: e.due, Err: err})
		case e.interval == 0:
			s.remove(e)
		case cancel:
			s.canceled++
			s.remove(e)
		default:
			e.due = now + e.interval
		}
	}
}

// invoke runs the callback, converting a panic into an error.
func (s *Scheduler) invoke(e *entry) (cancel bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.cb.Call()
}

func (s *Scheduler) remove(e *entry) {
	e.removed = true
	e.cb = nil
	s.dirty = true
}

func (s *Scheduler) report(cerr *CallbackError) {
	if s.onError != nil {
		s.onError(cerr)
		return
	}
	s.logger.Printf("[TIMER] %v", cerr)
}

// compact drops tombstoned entries, preserving insertion order.
func (s *Scheduler) compact() {
	if !s.dirty || s.ticking {
		return
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.removed {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = nil
	}
	s.entries = kept
	s.dirty = false
}

// Clear drops every pending entry. Called from inside a callback, the
// entries are tombstoned and compacted once the running Tick returns.
func (s *Scheduler) Clear() {
	for _, e := range s.entries {
		if !e.removed {
			s.remove(e)
		}
	}
	s.compact()
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	n := 0
	for _, e := range s.entries {
		if !e.removed {
			n++
		}
	}
	return n
}

// NextDue returns the earliest pending due time.
func (s *Scheduler) NextDue() (float64, bool) {
	next, ok := 0.0, false
	for _, e := range s.entries {
		if e.removed {
			continue
		}
		if !ok || e.due < next {
			next, ok = e.due, true
		}
	}
	return next, ok
}

// Stats returns a snapshot of the scheduler counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Pending:  s.Len(),
		Fired:    s.fired,
		Failed:   s.failed,
		Canceled: s.canceled,
	}
}
