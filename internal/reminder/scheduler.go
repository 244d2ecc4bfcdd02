// Package reminder schedules ephemeral one-shot reminders. A reminder exists
// only as a pending in-process timer: it fires exactly once and is gone, and
// none of them survive a restart.
package reminder

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one fired reminder, delivered to every subscriber.
type Event struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	SetAt   time.Time `json:"set_at"`
	FiredAt time.Time `json:"fired_at"`
}

var ErrClosed = errors.New("reminder scheduler is closed")

// Scheduler owns the pending timers and fans fired events out to
// subscribers. Slow subscribers drop events rather than block the timer
// goroutine.
type Scheduler struct {
	mu          sync.Mutex
	logger      *zap.Logger
	now         func() time.Time
	timers      map[string]*time.Timer
	setAt       map[string]time.Time
	subscribers map[int]chan Event
	nextSubID   int
	closed      bool
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger:      logger,
		now:         time.Now,
		timers:      make(map[string]*time.Timer),
		setAt:       make(map[string]time.Time),
		subscribers: make(map[int]chan Event),
	}
}

// Schedule arms a timer and returns immediately; the delay never blocks the
// caller's turn.
func (s *Scheduler) Schedule(delay time.Duration, message string) error {
	if delay <= 0 {
		return errors.New("reminder delay must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	id := uuid.NewString()
	s.setAt[id] = s.now()
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(id, message) })
	s.logger.Info("reminder scheduled",
		zap.String("reminder_id", id), zap.Duration("delay", delay))
	return nil
}

// Cancel disarms a pending reminder. Cancelling an already-fired or unknown
// ID is a no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
		delete(s.setAt, id)
	}
}

// Pending reports how many reminders are still armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Subscribe registers for fired reminders. The returned cancel func must be
// called to release the channel.
func (s *Scheduler) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

// Close disarms every pending timer and closes all subscriber channels.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
		delete(s.setAt, id)
	}
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Scheduler) fire(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.timers[id]; !ok {
		// Cancelled after the timer callback was already in flight.
		return
	}
	delete(s.timers, id)
	evt := Event{ID: id, Message: message, SetAt: s.setAt[id], FiredAt: s.now()}
	delete(s.setAt, id)

	s.logger.Info("reminder fired", zap.String("reminder_id", id))
	for _, ch := range s.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
