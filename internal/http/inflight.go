package http

import (
	"context"
	"sync"
	"time"
)

// InFlightTracker counts requests currently being served. Shutdown waits on
// it so no enrichment response is cut off mid-flight when the process exits.
type InFlightTracker struct {
	mu    sync.RWMutex
	count int64
}

// Increment marks a request as started. MetricsMiddleware calls this on entry.
func (t *InFlightTracker) Increment() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
}

// Decrement marks a request as finished, the deferred counterpart of Increment.
func (t *InFlightTracker) Decrement() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count--
}

// Count returns how many requests are in flight right now.
func (t *InFlightTracker) Count() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// WaitForZero polls Count every checkInterval until it reaches zero or ctx
// expires, returning the context error in the latter case.
func (t *InFlightTracker) WaitForZero(ctx context.Context, checkInterval time.Duration) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if t.Count() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// globalInFlightTracker is the process-wide counter fed by MetricsMiddleware.
var globalInFlightTracker = &InFlightTracker{}

// InFlightCount returns the process-wide in-flight request count.
func InFlightCount() int64 {
	return globalInFlightTracker.Count()
}

// WaitForInFlight blocks until the process-wide count drains to zero or ctx
// is done. main calls this between server shutdown and telemetry flush.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	return globalInFlightTracker.WaitForZero(ctx, checkInterval)
}
