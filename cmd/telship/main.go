package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/telship/internal/agent"
)

const helpDescription = `
Ship your application's telemetry feed to an ingestion service.

Highlights:
  - Tails a JSON-lines telemetry file and posts batches over HTTP.
  - Failed batches go back on the queue and are retried on the next drain.
  - Configure via file, env (TELSHIP_*), or flags; file changes apply live.
`

var exampleUsage = strings.TrimSpace(`
  telship --input /var/log/myapp/telemetry.jsonl --ikey <instrumentation-key>
  telship --config $HOME/.telship/config.toml --once
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := agent.DefaultConfig()
	var cfgPath string

	log := agent.Logger()

	root := &cobra.Command{
		Use:     "telship",
		Short:   "Ship your application's telemetry feed to an ingestion service",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.telship/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = agent.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && agent.FileExists(cfgFile) {
				fc, err := agent.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := agent.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				cfg.ConfigPath = cfgFile
			}

			// Environment variables override file config but are
			// overridden by flags (checked via changed map).
			if err := agent.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking the instrumentation key)
			logCfg := cfg
			if len(logCfg.IKey) > 0 {
				logCfg.IKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("received signal, stopping...")
				cancel()
			}()

			if err := agent.Run(ctx, cfg); err != nil && err != context.Canceled {
				return fmt.Errorf("run telship: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.telship/config.toml)")
	root.Flags().StringVar(&cfg.InputPath, "input", "", "JSON-lines telemetry file to tail")
	root.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, fmt.Sprintf("ingestion endpoint (defaults to %s)", agent.DefaultServiceURL))
	root.Flags().StringVar(&cfg.IKey, "ikey", cfg.IKey, "instrumentation key stamped on outgoing records")

	root.Flags().DurationVar(&cfg.SendInterval, "send-interval", cfg.SendInterval, "period between scheduled flushes")
	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "poll interval when the input is idle")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout recorded for the sender")

	root.Flags().IntVar(&cfg.SendBufferSize, "buffer-size", cfg.SendBufferSize, "maximum records per batch")
	root.Flags().IntVar(&cfg.MaxQueueLength, "max-queue-length", cfg.MaxQueueLength, "queue length that triggers an immediate flush")

	root.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "process available records and exit")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("telship failed")
		os.Exit(1)
	}
}
