// Package changecount aggregates the deferred "something changed" signals
// emitted by value cells.
package changecount

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Tracker is the aggregate end of a cell's external notifier: it counts
// change signals and logs a running report at a fixed interval.
type Tracker struct {
	log      zerolog.Logger
	interval time.Duration

	count atomic.Uint64
	stop  chan struct{}
	done  chan struct{}
}

// New creates a tracker and starts its reporter goroutine.
func New(log zerolog.Logger, interval time.Duration) *Tracker {
	t := &Tracker{
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.run()
	return t
}

// Notify records one change signal. It is the func handed to
// ValueCell.RegisterExternalNotifier and runs on the cell's deferred queue.
func (t *Tracker) Notify() {
	t.count.Add(1)
}

// Count returns the number of change signals observed so far.
func (t *Tracker) Count() uint64 {
	return t.count.Load()
}

func (t *Tracker) run() {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-ticker.C:
			total := t.count.Load()
			t.log.Info().
				Uint64("total", total).
				Uint64("delta", total-last).
				Msg("change signals observed")
			last = total
		case <-t.stop:
			return
		}
	}
}

// Stop halts reporting and blocks until the reporter goroutine exits.
func (t *Tracker) Stop() {
	close(t.stop)
	<-t.done
}
