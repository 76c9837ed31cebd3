package channel

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/telship/pkg/log"
)

// DefaultSendInterval is the default period between scheduled flushes.
const DefaultSendInterval = 5 * time.Second

// Worker drains a channel in the background. It flushes on a fixed
// interval and whenever the queue signals it is full, and performs a
// final flush on Stop.
type Worker struct {
	channel  *Channel
	interval time.Duration
	logger   log.Logger

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a worker flushing c every interval. Intervals of
// zero or less fall back to DefaultSendInterval.
func NewWorker(c *Channel, interval time.Duration, logger log.Logger) *Worker {
	if interval <= 0 {
		interval = DefaultSendInterval
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Worker{
		channel:  c,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background flush loop. It returns immediately; the
// loop runs until Stop is called or the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("worker started", log.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("worker context cancelled")
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.channel.Flush(ctx)
		case <-w.channel.Queue().FlushNotify():
			w.channel.Flush(ctx)
		}
	}
}

// Stop halts the flush loop, waits for it to exit, and flushes whatever
// is still buffered. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.channel.Flush(context.Background())
		w.logger.Debug("worker stopped")
	})
}
