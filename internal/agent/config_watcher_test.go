package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`service_url = "https://new.example.com"`+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	base := DefaultConfig()
	base.InputPath = "/var/log/app/telemetry.jsonl"
	base.SendBufferSize = 100

	var applied []Config
	w := NewConfigWatcher(path, base, func(cfg Config) {
		applied = append(applied, cfg)
	})

	w.Reload()

	if len(applied) != 1 {
		t.Fatalf("apply called %d times, want 1", len(applied))
	}
	if applied[0].ServiceURL != "https://new.example.com" {
		t.Errorf("ServiceURL = %q", applied[0].ServiceURL)
	}
	// Unchanged settings keep their base values.
	if applied[0].SendBufferSize != 100 {
		t.Errorf("SendBufferSize = %d, want 100", applied[0].SendBufferSize)
	}
}

func TestConfigWatcherReloadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w := NewConfigWatcher(path, DefaultConfig(), func(cfg Config) {
		t.Error("apply called for invalid config")
	})
	w.Reload()
}

func TestConfigWatcherPicksUpWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	base := DefaultConfig()
	base.InputPath = "/var/log/app/telemetry.jsonl"

	appliedCh := make(chan Config, 1)
	w := NewConfigWatcher(path, base, func(cfg Config) {
		select {
		case appliedCh <- cfg:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`service_url = "https://live.example.com"`+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	select {
	case cfg := <-appliedCh:
		if cfg.ServiceURL != "https://live.example.com" {
			t.Errorf("ServiceURL = %q", cfg.ServiceURL)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not apply updated config")
	}
}
