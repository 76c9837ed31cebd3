package agent

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bft-labs/telship/pkg/channel"
	"github.com/bft-labs/telship/pkg/log"
	"github.com/bft-labs/telship/pkg/queue"
	"github.com/bft-labs/telship/pkg/sender"
)

// Run tails the input file and ships its records until the context is
// cancelled. With cfg.Once it processes what is present, flushes, and
// returns.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	lg := log.NewZerologAdapterWithLogger(logger)

	q := queue.New(cfg.MaxQueueLength)
	snd := sender.New(cfg.ServiceURL,
		sender.WithLogger(lg),
		sender.WithSendTimeout(cfg.HTTPTimeout),
	)
	snd.SetQueue(q)
	snd.SetSendBufferSize(cfg.SendBufferSize)

	ch := channel.New(q, snd, channel.WithLogger(lg))
	worker := channel.NewWorker(ch, cfg.SendInterval, lg)
	worker.Start(ctx)
	defer worker.Stop()

	if cfg.ConfigPath != "" {
		watcher := NewConfigWatcher(cfg.ConfigPath, cfg, func(nc Config) {
			snd.SetEndpoint(nc.ServiceURL)
			snd.SetSendBufferSize(nc.SendBufferSize)
			q.SetMaxLength(nc.MaxQueueLength)
		})
		go watcher.Run(ctx)
	}

	logger.Info().
		Str("input", cfg.InputPath).
		Str("service_url", cfg.ServiceURL).
		Msg("agent started")

	r := &lineReader{path: cfg.InputPath}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lines, err := r.next()
		if err != nil {
			if os.IsNotExist(err) {
				if cfg.Once {
					return fmt.Errorf("input: %w", err)
				}
				// Input not written yet; keep polling.
				if !sleep(ctx, cfg.PollInterval) {
					return ctx.Err()
				}
				continue
			}
			return fmt.Errorf("read input: %w", err)
		}

		for _, line := range lines {
			env, perr := parseEnvelope(line, cfg.IKey)
			if perr != nil {
				logger.Warn().Err(perr).Msg("skipping malformed record")
				continue
			}
			ch.Put(env)
		}

		if len(lines) == 0 {
			if cfg.Once {
				// Final flush happens in the deferred worker stop.
				return nil
			}
			if !sleep(ctx, cfg.PollInterval) {
				return ctx.Err()
			}
		}
	}
}

// sleep waits for d or context cancellation, reporting false on cancel.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
