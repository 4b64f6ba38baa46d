package backend_test

import (
	"testing"

	"taskverse/internal/backend"
)

func TestSubscriptionDelivers(t *testing.T) {
	sub := backend.NewSubscription(nil)
	sub.Publish(backend.Change{Type: backend.ChangeInsert, Table: backend.TasksTable})

	select {
	case c := <-sub.Changes():
		if c.Type != backend.ChangeInsert || c.Table != backend.TasksTable {
			t.Errorf("got %+v", c)
		}
	default:
		t.Fatal("expected a buffered change")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	released := 0
	sub := backend.NewSubscription(func() { released++ })

	sub.Unsubscribe()
	sub.Unsubscribe()
	sub.Unsubscribe()

	if released != 1 {
		t.Errorf("cancel ran %d times, want 1", released)
	}
	if _, ok := <-sub.Changes(); ok {
		t.Error("channel should be closed")
	}
}

func TestPublishAfterUnsubscribeIsDropped(t *testing.T) {
	sub := backend.NewSubscription(nil)
	sub.Unsubscribe()

	// Must not panic on the closed channel, and must not deliver.
	sub.Publish(backend.Change{Type: backend.ChangeDelete, Table: backend.TasksTable})

	if _, ok := <-sub.Changes(); ok {
		t.Error("no change should be delivered after release")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	sub := backend.NewSubscription(nil)
	for i := 0; i < 100; i++ {
		sub.Publish(backend.Change{Type: backend.ChangeUpdate, Table: backend.TasksTable})
	}
	// Drain what was buffered; the overflow was dropped, not blocked on.
	n := 0
	for {
		select {
		case <-sub.Changes():
			n++
			continue
		default:
		}
		break
	}
	if n == 0 || n >= 100 {
		t.Errorf("buffered %d changes, want a bounded non-zero count", n)
	}
}

func TestErrorMessage(t *testing.T) {
	err := backend.NewError("Invalid login credentials")
	if got := backend.Message(err); got != "Invalid login credentials" {
		t.Errorf("Message = %q", got)
	}
	if got := backend.Message(nil); got != "" {
		t.Errorf("Message(nil) = %q, want empty", got)
	}
	if got := backend.Message(backend.ErrNoSession); got != "" {
		t.Errorf("Message(ErrNoSession) = %q, want empty", got)
	}
}
