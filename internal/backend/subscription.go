package backend

import "sync"

// Subscription is a live change feed for one table. Unsubscribe is
// idempotent: the feed is released exactly once no matter how many exit
// paths race to close it, and publishes arriving after release are dropped.
type Subscription struct {
	mu      sync.Mutex
	changes chan Change
	closed  bool
	cancel  func()
}

// NewSubscription creates a subscription whose teardown runs cancel once.
// cancel may be nil.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{
		changes: make(chan Change, 16),
		cancel:  cancel,
	}
}

// Changes returns the feed. The channel is closed by Unsubscribe.
func (s *Subscription) Changes() <-chan Change {
	return s.changes
}

// Publish delivers a change to the feed. Delivery is best-effort: a full
// buffer or a released subscription drops the event, since any change only
// triggers a full reload and a later event carries the same information.
func (s *Subscription) Publish(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.changes <- c:
	default:
	}
}

// Unsubscribe releases the feed and closes the change channel.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.changes)
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
