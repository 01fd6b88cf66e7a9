package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlaylist(); err != nil {
		return err
	}
	if err := c.validateChapters(); err != nil {
		return err
	}
	if err := c.validatePublisher(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlaylist() error {
	if strings.TrimSpace(c.Playlist.ID) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/sermoncast/config.toml"
		}
		return fmt.Errorf("playlist.id is required. Set SERMONCAST_PLAYLIST_ID env var or edit %s (create with 'sermoncast config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateChapters() error {
	switch c.Chapters.MissingPolicy {
	case MissingPolicyFullDuration, MissingPolicyAbort:
		return nil
	default:
		return fmt.Errorf("chapters.missing_policy must be %q or %q", MissingPolicyFullDuration, MissingPolicyAbort)
	}
}

func (c *Config) validatePublisher() error {
	if strings.TrimSpace(c.Publisher.Email) == "" {
		return errors.New("publisher.email must be set (or export SERMONCAST_EMAIL)")
	}
	if strings.TrimSpace(c.Publisher.Password) == "" {
		return errors.New("publisher.password must be set (or export SERMONCAST_PASSWORD)")
	}
	if c.Publisher.ActionDelayMinMs > c.Publisher.ActionDelayMaxMs {
		return errors.New("publisher.action_delay_min_ms must not exceed publisher.action_delay_max_ms")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"playlist.fetch_timeout":   c.Playlist.FetchTimeout,
		"download.timeout":         c.Download.Timeout,
		"audio.trim_timeout":       c.Audio.TrimTimeout,
		"publisher.upload_timeout": c.Publisher.UploadTimeout,
		"workflow.run_timeout":     c.Workflow.RunTimeout,
	})
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.TransientRetries < 1 {
		return errors.New("workflow.transient_retries must be at least 1")
	}
	if c.Workflow.RetryBaseSeconds <= 0 {
		return errors.New("workflow.retry_base_seconds must be positive")
	}
	if c.Workflow.RetryMaxSeconds < c.Workflow.RetryBaseSeconds {
		return errors.New("workflow.retry_max_seconds must be at least workflow.retry_base_seconds")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive (seconds)", key)
		}
	}
	return nil
}
