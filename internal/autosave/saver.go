// Package autosave debounces persistence of the bill aggregate.
//
// Engine mutations are synchronous and unaware of timers; the service
// marks the bill dirty after each one and the Saver coalesces bursts of
// mutation into a single save per debounce window. Saves are
// best-effort: a failure is reported through the error hook, never
// retried silently, and never blocks further local mutation. Local
// state stays the source of truth until the next successful save.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nbbang/dutchpay/internal/models"
)

// saveTimeout bounds one background save attempt.
const saveTimeout = 5 * time.Second

// SaveFunc persists a bill snapshot.
type SaveFunc func(ctx context.Context, bill *models.Bill) error

// Saver schedules debounced saves of one bill aggregate. It assumes
// single-writer semantics: the pointer handed to MarkDirty is the
// owned in-memory instance, and last writer wins at the persistence
// boundary.
type Saver struct {
	delay   time.Duration
	save    SaveFunc
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *models.Bill
	closed  bool
}

// New creates a Saver that writes through save after delay of
// inactivity. A nil onError falls back to logging the failure.
func New(delay time.Duration, save SaveFunc, onError func(error)) *Saver {
	if onError == nil {
		onError = func(err error) {
			slog.Error("autosave failed", "error", err)
		}
	}
	return &Saver{delay: delay, save: save, onError: onError}
}

// MarkDirty schedules a save of the bill after the debounce window,
// restarting the window if a save is already pending.
func (s *Saver) MarkDirty(bill *models.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = bill
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Saver) fire() {
	bill := s.take()
	if bill == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.save(ctx, bill); err != nil {
		s.onError(err)
	}
}

// Flush saves any pending bill immediately and synchronously.
func (s *Saver) Flush(ctx context.Context) error {
	bill := s.take()
	if bill == nil {
		return nil
	}
	return s.save(ctx, bill)
}

// Close stops the timer and flushes pending work. The Saver accepts no
// new work afterwards.
func (s *Saver) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(context.Background())
}

func (s *Saver) take() *models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	bill := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return bill
}
