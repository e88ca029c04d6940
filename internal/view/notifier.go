package view

import (
	"fmt"
	"sync"
	"time"

	"neonlocal/pkg/logging"
)

// Subscription is one sink's feed of snapshots. Delivery is non-blocking:
// a sink that falls behind loses intermediate snapshots but the drop is
// counted and logged, never silent.
type Subscription struct {
	ID      string
	Channel chan ConnectionSnapshot

	mu     sync.Mutex
	closed bool
}

// Close closes the subscription channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.Channel)
		s.closed = true
	}
}

func (s *Subscription) deliver(snapshot ConnectionSnapshot) (delivered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.Channel <- snapshot:
		return true
	default:
		return false
	}
}

// Notifier fans snapshots out to subscribers and keeps the latest snapshot
// for late joiners.
type Notifier struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	latest        ConnectionSnapshot
	hasLatest     bool
	subIDCounter  int64
	dropped       int64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		subscriptions: make(map[string]*Subscription),
	}
}

// Subscribe registers a sink. The current snapshot, if any, is queued
// immediately so the sink never starts blind.
func (n *Notifier) Subscribe() *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.subIDCounter++
	sub := &Subscription{
		ID:      fmt.Sprintf("sub-%d", n.subIDCounter),
		Channel: make(chan ConnectionSnapshot, 16),
	}
	n.subscriptions[sub.ID] = sub
	if n.hasLatest {
		sub.deliver(n.latest)
	}
	return sub
}

// Unsubscribe removes and closes a subscription.
func (n *Notifier) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	n.mu.Lock()
	delete(n.subscriptions, sub.ID)
	n.mu.Unlock()
	sub.Close()
}

// Publish records the snapshot and fans it out to all subscribers.
func (n *Notifier) Publish(snapshot ConnectionSnapshot) {
	if snapshot.LastUpdated.IsZero() {
		snapshot.LastUpdated = time.Now()
	}

	n.mu.Lock()
	n.latest = snapshot
	n.hasLatest = true
	subs := make([]*Subscription, 0, len(n.subscriptions))
	for _, sub := range n.subscriptions {
		subs = append(subs, sub)
	}
	n.mu.Unlock()

	for _, sub := range subs {
		if !sub.deliver(snapshot) {
			n.mu.Lock()
			n.dropped++
			n.mu.Unlock()
			logging.Warn("ViewNotifier", "Subscriber %s is not keeping up, dropped snapshot (state=%s)", sub.ID, snapshot.State)
		}
	}
}

// Latest returns the most recently published snapshot.
func (n *Notifier) Latest() (ConnectionSnapshot, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.latest, n.hasLatest
}

// DroppedCount reports how many snapshots were dropped across all
// subscribers since creation.
func (n *Notifier) DroppedCount() int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.dropped
}
