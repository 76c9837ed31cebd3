package agent

import "os"

// ApplyEnvConfig applies configuration from environment variables (TELSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", os.Getenv("TELSHIP_INPUT"), &cfg.InputPath)
	s.setString("service-url", os.Getenv("TELSHIP_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("ikey", os.Getenv("TELSHIP_IKEY"), &cfg.IKey)

	if err := s.setDuration("send-interval", os.Getenv("TELSHIP_SEND_INTERVAL"), &cfg.SendInterval); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("TELSHIP_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("TELSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("buffer-size", os.Getenv("TELSHIP_BUFFER_SIZE"), &cfg.SendBufferSize); err != nil {
		return err
	}
	if err := s.setIntFromString("max-queue-length", os.Getenv("TELSHIP_MAX_QUEUE_LENGTH"), &cfg.MaxQueueLength); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv("TELSHIP_ONCE"), &cfg.Once)

	return nil
}
