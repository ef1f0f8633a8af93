// Package bus is the pub/sub seam between agent runs and their
// observers. Each job owns two channels: an event channel the loop
// publishes progress to, and an interrupt channel anyone may poke to
// request cooperative cancellation.
package bus

import (
	"context"
	"fmt"
)

// EventsChannel names the per-job event channel.
func EventsChannel(jobID string) string { return fmt.Sprintf("job:%s:events", jobID) }

// InterruptChannel names the per-job interrupt channel. Any message on
// it is a cancellation request; content is ignored.
func InterruptChannel(jobID string) string { return fmt.Sprintf("job:%s:interrupt", jobID) }

// Subscription is a live subscription to one channel. Messages is closed
// after Close (or when the transport shuts down).
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// Transport is the pub/sub collaborator contract. Implementations:
// Redis for production, Memory for tests and single-process use.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
	Close() error
}
