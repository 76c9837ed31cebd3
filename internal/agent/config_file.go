package agent

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Input          string `toml:"input"`
	ServiceURL     string `toml:"service_url"`
	IKey           string `toml:"ikey"`
	SendInterval   string `toml:"send_interval"`
	PollInterval   string `toml:"poll_interval"`
	SendBufferSize int    `toml:"buffer_size"`
	MaxQueueLength int    `toml:"max_queue_length"`
	HTTPTimeout    string `toml:"http_timeout"`
	Once           *bool  `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.telship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".telship", "config.toml")
	}
	return ""
}

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", fc.Input, &cfg.InputPath)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("ikey", fc.IKey, &cfg.IKey)

	if err := s.setDuration("send-interval", fc.SendInterval, &cfg.SendInterval); err != nil {
		return err
	}
	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("buffer-size", fc.SendBufferSize, &cfg.SendBufferSize)
	s.setInt("max-queue-length", fc.MaxQueueLength, &cfg.MaxQueueLength)

	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}
