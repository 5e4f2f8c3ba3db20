package cell

import "sync"

// Publisher fans values out to subscribers. Every cell owns one; it is the
// cell's projected observable face.
//
// The publisher models a current-value broadcaster, not a pure event
// stream: each new subscriber is immediately handed the value current at
// subscribe time, and delivery is unconditional synchronous push with no
// demand negotiation. The underlying value stream never fails and never
// completes, so a subscription knows no terminal state besides
// cancellation.
type Publisher[V any] struct {
	mu   sync.Mutex
	last V
	subs []*Subscription[V]
}

func newPublisher[V any](initial V) *Publisher[V] {
	return &Publisher[V]{last: initial}
}

// Subscribe registers onReceive and synchronously delivers the current
// recallable value before returning, so a fresh subscriber is never
// without an initial value. Subsequent values arrive through broadcasts,
// in registration order relative to other subscribers.
//
// Panics if onReceive is nil.
func (p *Publisher[V]) Subscribe(onReceive func(V)) *Subscription[V] {
	if onReceive == nil {
		panic("subscribe with nil callback")
	}

	s := &Subscription[V]{pub: p, onReceive: onReceive}

	p.mu.Lock()
	p.subs = append(p.subs, s)
	replay := p.last
	p.mu.Unlock()

	// Replay-one runs outside the lock so the callback may itself
	// subscribe or cancel.
	onReceive(replay)
	return s
}

// delivery pairs a subscription with the callback captured under the
// publisher lock, so broadcast never reads a callback Cancel is clearing.
type delivery[V any] struct {
	sub *Subscription[V]
	fn  func(V)
}

// broadcast pushes value to every active subscription on the calling
// goroutine. Driven by ValueCell.Set step 2, before the commit.
//
// The cancelled flag is checked immediately before each callback runs, so
// a subscription cancelled reentrantly from a callback is skipped for the
// rest of the broadcast without disturbing its siblings.
func (p *Publisher[V]) broadcast(value V) {
	p.mu.Lock()
	targets := make([]delivery[V], 0, len(p.subs))
	for _, s := range p.subs {
		targets = append(targets, delivery[V]{sub: s, fn: s.onReceive})
	}
	p.mu.Unlock()

	for _, d := range targets {
		if d.sub.cancelled.Load() {
			continue
		}
		d.fn(value)
	}
}

// commit advances the replay value. Step 3 of the mutation protocol.
func (p *Publisher[V]) commit(value V) {
	p.mu.Lock()
	p.last = value
	p.mu.Unlock()
}

// detach removes s from the active set and drops its callback reference.
// Called exactly once per subscription, from Subscription.Cancel.
func (p *Publisher[V]) detach(s *Subscription[V]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s.onReceive = nil
	for i, cur := range p.subs {
		if cur == s {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}
