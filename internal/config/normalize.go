package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlaylist()
	c.normalizeDownload()
	c.normalizeAudio()
	c.normalizeChapters()
	c.normalizePublisher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = ExpandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePlaylist() {
	if env := strings.TrimSpace(os.Getenv("SERMONCAST_PLAYLIST_ID")); env != "" {
		c.Playlist.ID = env
	}
	if strings.TrimSpace(c.Playlist.BaseURL) == "" {
		c.Playlist.BaseURL = defaultPlaylistBaseURL
	}
	c.Playlist.BaseURL = strings.TrimRight(c.Playlist.BaseURL, "/")
}

func (c *Config) normalizeDownload() {
	if strings.TrimSpace(c.Download.Binary) == "" {
		c.Download.Binary = defaultDownloadBinary
	}
	if strings.TrimSpace(c.Download.Format) == "" {
		c.Download.Format = defaultDownloadFormat
	}
}

func (c *Config) normalizeAudio() {
	if strings.TrimSpace(c.Audio.Codec) == "" {
		c.Audio.Codec = defaultAudioCodec
	}
	if c.Audio.ToleranceSeconds <= 0 {
		c.Audio.ToleranceSeconds = defaultToleranceSeconds
	}
}

func (c *Config) normalizeChapters() {
	c.Chapters.MissingPolicy = strings.ToLower(strings.TrimSpace(c.Chapters.MissingPolicy))
	if c.Chapters.MissingPolicy == "" {
		c.Chapters.MissingPolicy = defaultMissingPolicy
	}
}

func (c *Config) normalizePublisher() {
	if env := strings.TrimSpace(os.Getenv("SERMONCAST_EMAIL")); env != "" {
		c.Publisher.Email = env
	}
	if env := strings.TrimSpace(os.Getenv("SERMONCAST_PASSWORD")); env != "" {
		c.Publisher.Password = env
	}
	if strings.TrimSpace(c.Publisher.BaseURL) == "" {
		c.Publisher.BaseURL = defaultPublisherBaseURL
	}
	c.Publisher.BaseURL = strings.TrimRight(c.Publisher.BaseURL, "/")
	if c.Publisher.ActionDelayMinMs <= 0 {
		c.Publisher.ActionDelayMinMs = defaultActionDelayMinMs
	}
	if c.Publisher.ActionDelayMaxMs <= 0 {
		c.Publisher.ActionDelayMaxMs = defaultActionDelayMaxMs
	}
	if strings.TrimSpace(c.Publisher.EpisodeDescription) == "" {
		c.Publisher.EpisodeDescription = defaultEpisodeDescription
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
