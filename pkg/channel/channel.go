// Package channel ties the telemetry queue to the sender that drains it.
//
// A Channel accepts telemetry through Put and moves buffered items to
// the sender in batches sized by the sender's buffer size. A Worker runs
// the draining on a schedule: every send interval, whenever the queue
// signals it is full, and once more on Stop.
package channel

import (
	"context"

	"github.com/bft-labs/telship/pkg/contracts"
	"github.com/bft-labs/telship/pkg/log"
	"github.com/bft-labs/telship/pkg/queue"
)

// Transmitter is the sender-side surface the channel drives.
// *sender.Sender satisfies this interface.
type Transmitter interface {
	// Send transmits one batch. Delivery failures are absorbed by the
	// transmitter, which returns undelivered items to the queue.
	Send(ctx context.Context, items []contracts.Telemetry)

	// SendBufferSize returns the maximum number of items per batch.
	SendBufferSize() int
}

// Channel moves telemetry from a queue to a transmitter in batches.
type Channel struct {
	queue  *queue.Queue
	tx     Transmitter
	logger log.Logger
}

// Option configures optional behavior of a Channel.
type Option func(*Channel)

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// New creates a channel draining q into tx.
func New(q *queue.Queue, tx Transmitter, opts ...Option) *Channel {
	c := &Channel{
		queue:  q,
		tx:     tx,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put enqueues one telemetry item for later transmission.
func (c *Channel) Put(item contracts.Telemetry) {
	c.queue.Put(item)
}

// Queue returns the underlying queue.
func (c *Channel) Queue() *queue.Queue {
	return c.queue
}

// Flush drains the items buffered at the time of the call, sending them
// in batches of at most the transmitter's buffer size. Items the
// transmitter returns to the queue during this flush are left for the
// next one, so a flush terminates even when the endpoint is down.
func (c *Channel) Flush(ctx context.Context) {
	remaining := c.queue.Len()
	if remaining == 0 {
		return
	}
	c.logger.Debug("flushing queue", log.Int("items", remaining))

	for remaining > 0 {
		max := c.tx.SendBufferSize()
		if max < 1 {
			max = 1
		}
		if max > remaining {
			max = remaining
		}
		batch := c.nextBatch(max)
		if len(batch) == 0 {
			return
		}
		remaining -= len(batch)
		c.tx.Send(ctx, batch)
	}
}

// nextBatch pops up to max items off the queue.
func (c *Channel) nextBatch(max int) []contracts.Telemetry {
	batch := make([]contracts.Telemetry, 0, max)
	for len(batch) < max {
		item, ok := c.queue.Get()
		if !ok {
			break
		}
		batch = append(batch, item)
	}
	return batch
}
