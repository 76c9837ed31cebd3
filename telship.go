// Package telship provides a lightweight agent for shipping application
// telemetry to an ingestion service.
//
// Example usage:
//
//	cfg := telship.DefaultConfig()
//	cfg.InputPath = "/var/log/app/telemetry.jsonl"
//	cfg.IKey = "your-instrumentation-key"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := telship.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package telship

import (
	"context"

	"github.com/bft-labs/telship/internal/agent"
	"github.com/rs/zerolog"
)

// Config holds the configuration for the telemetry shipping agent.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = agent.Config

// Run starts the telemetry shipping agent with the given configuration.
// It blocks until the context is cancelled or an unrecoverable error occurs.
// Use cfg.Once = true to process available records and exit immediately.
func Run(ctx context.Context, cfg Config) error {
	return agent.Run(ctx, cfg)
}

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set InputPath before calling Run.
func DefaultConfig() Config {
	return agent.DefaultConfig()
}

// Logger returns the package-level zerolog logger used by the agent.
func Logger() zerolog.Logger {
	return agent.Logger()
}

// DefaultServiceURL is the default ingestion endpoint for telemetry batches.
const DefaultServiceURL = agent.DefaultServiceURL
