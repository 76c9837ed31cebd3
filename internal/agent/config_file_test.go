package agent

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name        string
		fileConfig  FileConfig
		changed     map[string]bool
		initial     Config
		expected    Config
		expectError bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Input:          "/var/log/app/telemetry.jsonl",
				ServiceURL:     "https://ingest.example.com",
				IKey:           "ikey-1",
				SendInterval:   "10s",
				PollInterval:   "250ms",
				SendBufferSize: 50,
				MaxQueueLength: 1000,
				HTTPTimeout:    "1m",
				Once:           &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				InputPath:      "/var/log/app/telemetry.jsonl",
				ServiceURL:     "https://ingest.example.com",
				IKey:           "ikey-1",
				SendInterval:   10 * time.Second,
				PollInterval:   250 * time.Millisecond,
				SendBufferSize: 50,
				MaxQueueLength: 1000,
				HTTPTimeout:    time.Minute,
				Once:           true,
			},
			expectError: false,
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Input:      "/config/input.jsonl",
				ServiceURL: "https://config.example.com",
			},
			changed: map[string]bool{"input": true},
			initial: Config{
				InputPath:  "/flag/input.jsonl",
				ServiceURL: "https://flag.example.com",
			},
			expected: Config{
				InputPath:  "/flag/input.jsonl", // unchanged because flag was set
				ServiceURL: "https://config.example.com",
			},
			expectError: false,
		},
		{
			name: "ignores empty and non-positive values",
			fileConfig: FileConfig{
				SendBufferSize: 0,
				MaxQueueLength: -1,
			},
			changed: map[string]bool{},
			initial: Config{
				SendBufferSize: 100,
				MaxQueueLength: 500,
			},
			expected: Config{
				SendBufferSize: 100,
				MaxQueueLength: 500,
			},
			expectError: false,
		},
		{
			name: "rejects malformed duration",
			fileConfig: FileConfig{
				SendInterval: "not-a-duration",
			},
			changed:     map[string]bool{},
			initial:     Config{},
			expected:    Config{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
input = "/var/log/app/telemetry.jsonl"
service_url = "https://ingest.example.com"
ikey = "ikey-1"
send_interval = "10s"
buffer_size = 25
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	if fc.Input != "/var/log/app/telemetry.jsonl" {
		t.Errorf("Input = %q", fc.Input)
	}
	if fc.ServiceURL != "https://ingest.example.com" {
		t.Errorf("ServiceURL = %q", fc.ServiceURL)
	}
	if fc.IKey != "ikey-1" {
		t.Errorf("IKey = %q", fc.IKey)
	}
	if fc.SendInterval != "10s" {
		t.Errorf("SendInterval = %q", fc.SendInterval)
	}
	if fc.SendBufferSize != 25 {
		t.Errorf("SendBufferSize = %d", fc.SendBufferSize)
	}
}

func TestLoadFileConfigMissing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
