package reminder

import (
	"testing"
	"time"
)

func TestScheduleFiresAndDelivers(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Close()

	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.Schedule(10*time.Millisecond, "stretch"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if got := s.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}

	select {
	case evt := <-events:
		if evt.Message != "stretch" {
			t.Fatalf("evt.Message = %q, want %q", evt.Message, "stretch")
		}
		if evt.ID == "" {
			t.Fatalf("evt.ID is empty")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("reminder never fired")
	}

	if got := s.Pending(); got != 0 {
		t.Fatalf("Pending() after fire = %d, want 0", got)
	}
}

func TestScheduleRejectsNonPositiveDelay(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Close()
	if err := s.Schedule(0, "nope"); err == nil {
		t.Fatalf("Schedule(0) accepted a zero delay")
	}
}

func TestSubscribeFanOut(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Close()

	a, cancelA := s.Subscribe()
	defer cancelA()
	b, cancelB := s.Subscribe()
	defer cancelB()

	if err := s.Schedule(5*time.Millisecond, "both"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case evt := <-ch:
			if evt.Message != "both" {
				t.Fatalf("subscriber %s got %q", name, evt.Message)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %s never got the event", name)
		}
	}
}

func TestCancelledSubscriberChannelCloses(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Close()

	ch, cancel := s.Subscribe()
	cancel()
	if _, open := <-ch; open {
		t.Fatalf("channel still open after unsubscribe")
	}
}

func TestCloseDisarmsPendingTimers(t *testing.T) {
	s := NewScheduler(nil)
	events, cancel := s.Subscribe()
	defer cancel()

	if err := s.Schedule(20*time.Millisecond, "late"); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	s.Close()

	if err := s.Schedule(time.Millisecond, "after close"); err != ErrClosed {
		t.Fatalf("Schedule() after Close error = %v, want ErrClosed", err)
	}

	select {
	case evt, open := <-events:
		if open {
			t.Fatalf("got event %+v after Close", evt)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("subscriber channel not closed by Close")
	}
}
