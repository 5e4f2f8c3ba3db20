package cell_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/neox5/obscell/cell"
)

// ============================================================================
// BENCHMARK TESTS
// Measure performance characteristics
// ============================================================================

// BenchmarkGet_SingleReader measures single-threaded read performance.
func BenchmarkGet_SingleReader(b *testing.B) {
	c := cell.New(1.0)

	b.ResetTimer()

	for b.Loop() {
		_ = c.Get()
	}
}

// BenchmarkGet_ConcurrentReads measures concurrent read performance.
func BenchmarkGet_ConcurrentReads(b *testing.B) {
	c := cell.New(1.0)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = c.Get()
		}
	})
}

// BenchmarkSet_NoSubscribers measures the bare mutation protocol.
func BenchmarkSet_NoSubscribers(b *testing.B) {
	c := cell.New(0.0)

	b.ResetTimer()

	for b.Loop() {
		c.Set(1.0)
	}
}

// BenchmarkSet_TenSubscribers measures fan-out cost per broadcast.
func BenchmarkSet_TenSubscribers(b *testing.B) {
	c := cell.New(0.0)
	var sink atomic.Uint64
	for range 10 {
		sub := c.Subscribe(func(float64) { sink.Add(1) })
		defer sub.Cancel()
	}

	b.ResetTimer()

	for b.Loop() {
		c.Set(1.0)
	}
}

// BenchmarkSubscribeCancelChurn measures subscription lifecycle cost.
func BenchmarkSubscribeCancelChurn(b *testing.B) {
	c := cell.New(0.0)

	b.ResetTimer()

	for b.Loop() {
		c.Subscribe(func(float64) {}).Cancel()
	}
}

// ============================================================================
// STRESS TESTS
// Extreme scenarios to expose race conditions and verify robustness
// Run with: go test -run=Stress ./cell
// Skip with: go test -short ./cell
// ============================================================================

// TestStress_WriterOrderingPerGoroutine verifies that concurrent Set calls
// never interleave their broadcasts: each writer's values must reach a
// subscriber in the order that writer issued them.
func TestStress_WriterOrderingPerGoroutine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const (
		writers       = 4
		setsPerWriter = 2000
	)

	c := cell.New(0.0)

	rec := &recorder{}
	sub := c.Subscribe(rec.receive)
	defer sub.Cancel()

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range setsPerWriter {
				// Encode (writer, sequence) so ordering is checkable
				// per writer after the fact.
				c.Set(float64(w) + float64(i+1)*10)
			}
		}()
	}
	wg.Wait()

	got := rec.snapshot()
	if len(got) != 1+writers*setsPerWriter {
		t.Fatalf("expected %d deliveries, got %d", 1+writers*setsPerWriter, len(got))
	}

	lastSeq := make([]int, writers)
	for _, v := range got[1:] {
		w := int(v) % 10
		seq := int(v) / 10
		if seq <= lastSeq[w] {
			t.Fatalf("writer %d: sequence %d arrived after %d", w, seq, lastSeq[w])
		}
		lastSeq[w] = seq
	}
}

// TestStress_SubscribeCancelDuringBroadcasts hammers the subscription set
// from multiple goroutines while a writer broadcasts continuously.
func TestStress_SubscribeCancelDuringBroadcasts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	c := cell.New(0.0)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0.0
		for {
			select {
			case <-stop:
				return
			default:
				i++
				c.Set(i)
			}
		}
	}()

	var received atomic.Uint64
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deadline := time.Now().Add(200 * time.Millisecond)
			for time.Now().Before(deadline) {
				sub := c.Subscribe(func(float64) { received.Add(1) })
				_ = c.Get()
				sub.Cancel()
				sub.Cancel()
			}
		}()
	}

	time.Sleep(250 * time.Millisecond)
	close(stop)
	wg.Wait()

	if received.Load() == 0 {
		t.Fatal("expected at least the replay deliveries to land")
	}
}

// TestStress_NotifierFIFOUnderLoad checks that a burst of Set calls yields
// exactly one deferred notification each, all delivered by one worker.
func TestStress_NotifierFIFOUnderLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const sets = 5000

	c := cell.New(0)
	defer c.Close()

	var calls atomic.Uint64
	c.RegisterExternalNotifier(func() { calls.Add(1) })

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range sets / 4 {
				c.Set(i)
			}
		}()
	}
	wg.Wait()

	waitUntil(t, 5*time.Second, func() bool { return calls.Load() == sets })
}
