// Package scheduler runs a repeating task behind an explicit cancel handle.
// Ticks execute serially on one goroutine, so a tick can never overlap a
// previous one; a slow tick simply absorbs the ticker signals it missed.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Handle controls one repeating task.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every starts fn on a fixed period. The context passed to fn is canceled
// by Stop, so a tick blocked on I/O unblocks promptly.
func Every(period time.Duration, fn func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn(ctx)
			}
		}
	}()

	return h
}

// Stop cancels the task and waits for any in-flight tick to return.
// After Stop returns, fn will not be invoked again. Safe to call twice.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}
