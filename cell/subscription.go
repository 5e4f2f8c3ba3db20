package cell

import "sync/atomic"

// Subscription is one observer's live registration with a Publisher,
// returned by Subscribe and active until Cancel.
type Subscription[V any] struct {
	pub       *Publisher[V]
	onReceive func(V) // guarded by pub.mu; cleared on cancel
	cancelled atomic.Bool
}

// Cancel detaches the subscription. After Cancel returns no further
// broadcast reaches this subscription; a Cancel issued from inside the
// subscription's own callback takes effect for the remainder of the
// in-flight broadcast.
//
// Cancel is idempotent and does not assume the subscriber still exists: it
// only drops the publisher's reference to the callback.
func (s *Subscription[V]) Cancel() {
	if !s.cancelled.CompareAndSwap(false, true) {
		return
	}
	s.pub.detach(s)
}

// Active reports whether the subscription still receives broadcasts.
func (s *Subscription[V]) Active() bool {
	return !s.cancelled.Load()
}
