package runtime

import (
	"context"
	"os/signal"
	"syscall"
)

// SignalContext is the root context for a service process; it ends on SIGINT
// or SIGTERM and every poller, consumer and server hangs off it.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

