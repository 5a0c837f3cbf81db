package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvery_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int64
	h := Every(5*time.Millisecond, func(ctx context.Context) {
		ticks.Add(1)
	})

	time.Sleep(60 * time.Millisecond)
	h.Stop()
	after := ticks.Load()
	assert.Greater(t, after, int64(0), "expected at least one tick")

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no ticks may run after Stop returns")
}

func TestStop_WaitsForInFlightTick(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	h := Every(5*time.Millisecond, func(ctx context.Context) {
		select {
		case entered <- struct{}{}:
			<-release
			finished.Store(true)
		default:
		}
	})

	<-entered
	done := make(chan struct{})
	go func() {
		h.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned while a tick was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done
	assert.True(t, finished.Load(), "in-flight tick must complete before Stop returns")
}

func TestEvery_TicksNeverOverlap(t *testing.T) {
	var inFlight atomic.Int32
	var overlapped atomic.Bool

	h := Every(time.Millisecond, func(ctx context.Context) {
		if inFlight.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(5 * time.Millisecond) // slower than the period
		inFlight.Add(-1)
	})

	time.Sleep(50 * time.Millisecond)
	h.Stop()
	assert.False(t, overlapped.Load(), "ticks must execute serially")
}

func TestStop_CancelsTickContext(t *testing.T) {
	canceled := make(chan struct{})
	var once sync.Once

	h := Every(time.Millisecond, func(ctx context.Context) {
		<-ctx.Done() // simulate a read blocked on I/O
		once.Do(func() { close(canceled) })
	})

	time.Sleep(10 * time.Millisecond)
	h.Stop()

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("tick context was not canceled by Stop")
	}
}

func TestStop_Idempotent(t *testing.T) {
	h := Every(time.Millisecond, func(ctx context.Context) {})
	h.Stop()
	h.Stop() // must not panic or hang
}
