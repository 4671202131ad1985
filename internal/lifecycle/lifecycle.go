package lifecycle

import "sync/atomic"

var shuttingDown atomic.Bool

// SetShuttingDown flips the drain flag. main sets it on SIGTERM/SIGINT so
// load balancers pull the instance out of rotation via /health while the
// last enrichment requests complete.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining. The health handler
// answers 503 shutting-down while this is true.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}
