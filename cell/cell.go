// Package cell provides an observable value cell: a generic container that
// holds a current value, synchronously broadcasts every new value to its
// subscribers, and can signal an aggregating container through a deferred
// notification queue.
//
// The mutation protocol is deliberately publish-before-commit: subscribers
// receive the new value while Get still returns the old one. See Set.
package cell

import (
	"sync"

	"github.com/neox5/obscell/notify"
)

// ValueCell holds the observable current value of type V.
//
// A cell owns its Publisher for its whole lifetime. The zero value is not
// usable; create cells with New.
type ValueCell[V any] struct {
	// mu serializes the full mutation protocol of Set so broadcasts and
	// commits from concurrent writers never interleave.
	mu sync.Mutex

	// valMu guards only the committed slot, keeping Get usable from inside
	// a broadcast callback while mu is held.
	valMu   sync.RWMutex
	current V

	pub *Publisher[V]

	// External notifier linkage; nil until RegisterExternalNotifier.
	notifyMu sync.Mutex
	notifier func()
	queue    *notify.Queue

	closeOnce sync.Once
}

// New creates a cell holding initial. The cell's publisher replays initial
// to subscribers that arrive before the first Set.
func New[V any](initial V) *ValueCell[V] {
	return &ValueCell[V]{
		current: initial,
		pub:     newPublisher(initial),
	}
}

// Get returns the last committed value.
//
// Safe to call concurrently with Set. Called from inside a subscriber
// callback during a broadcast it returns the value from before the Set in
// flight; the new value becomes readable only once Set commits it.
func (c *ValueCell[V]) Get() V {
	c.valMu.RLock()
	defer c.valMu.RUnlock()
	return c.current
}

// Set assigns a new value, executing the mutation protocol atomically with
// respect to other Set calls:
//
//  1. schedule the external notifier, if registered, on the deferred queue
//  2. broadcast newValue synchronously to every active subscription
//  3. commit newValue so Get and late subscribers observe it
//
// Set never fails and never deduplicates: setting the same value twice
// broadcasts twice. Calling Set from inside a subscriber callback is not
// supported and deadlocks on the protocol lock.
func (c *ValueCell[V]) Set(newValue V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scheduleNotify()
	c.pub.broadcast(newValue)

	c.valMu.Lock()
	c.current = newValue
	c.valMu.Unlock()
	c.pub.commit(newValue)
}

// RegisterExternalNotifier wires an aggregating container into the cell.
// Each Set schedules one zero-argument call of notifier on a FIFO queue
// owned by the cell; the call carries no payload and is delivered at some
// point after Set returns, decoupled from the calling goroutine.
//
// Replaces any previously registered notifier; nil unregisters. The queue
// worker starts on the first registration and runs until Close.
func (c *ValueCell[V]) RegisterExternalNotifier(notifier func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.notifier = notifier
	if notifier != nil && c.queue == nil {
		c.queue = notify.NewQueue()
	}
}

func (c *ValueCell[V]) scheduleNotify() {
	c.notifyMu.Lock()
	notifier, queue := c.notifier, c.queue
	c.notifyMu.Unlock()

	if notifier == nil {
		return
	}
	queue.Defer(notifier)
}

// Observe returns the cell's publisher, its public observable face.
func (c *ValueCell[V]) Observe() *Publisher[V] {
	return c.pub
}

// Subscribe registers onReceive with the cell's publisher. See
// Publisher.Subscribe for the replay-one contract.
func (c *ValueCell[V]) Subscribe(onReceive func(V)) *Subscription[V] {
	return c.pub.Subscribe(onReceive)
}

// Close stops the deferred notification queue, draining notifications
// already scheduled. Safe to call multiple times. The cell itself remains
// usable afterwards, but external notifications are no longer delivered.
func (c *ValueCell[V]) Close() {
	c.closeOnce.Do(func() {
		c.notifyMu.Lock()
		queue := c.queue
		c.notifyMu.Unlock()

		if queue != nil {
			queue.Close()
		}
	})
}
