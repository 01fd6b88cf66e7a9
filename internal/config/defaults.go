package config

const (
	defaultStagingDir         = "~/.local/share/sermoncast/staging"
	defaultLogDir             = "~/.local/share/sermoncast/logs"
	defaultPlaylistBaseURL    = "https://www.youtube.com/playlist"
	defaultFetchTimeout       = 30
	defaultDownloadBinary     = "yt-dlp"
	defaultDownloadFormat     = "mp4"
	defaultDownloadTimeout    = 1800
	defaultAudioCodec         = "libmp3lame"
	defaultToleranceSeconds   = 1.0
	defaultTrimTimeout        = 600
	defaultMissingPolicy      = MissingPolicyFullDuration
	defaultPublisherBaseURL   = "https://podcasters.spotify.com"
	defaultActionDelayMinMs   = 800
	defaultActionDelayMaxMs   = 2600
	defaultUploadTimeout      = 180
	defaultEpisodeDescription = "Join us online for our Sunday services @ 9AM & 11AM."
	defaultRunTimeout         = 3600
	defaultTransientRetries   = 3
	defaultRetryBaseSeconds   = 2
	defaultRetryMaxSeconds    = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Missing-chapter policy values accepted by chapters.missing_policy.
const (
	MissingPolicyFullDuration = "full_duration"
	MissingPolicyAbort        = "abort"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Playlist: Playlist{
			BaseURL:      defaultPlaylistBaseURL,
			FetchTimeout: defaultFetchTimeout,
		},
		Download: Download{
			Binary:  defaultDownloadBinary,
			Format:  defaultDownloadFormat,
			Timeout: defaultDownloadTimeout,
		},
		Audio: Audio{
			Codec:            defaultAudioCodec,
			ToleranceSeconds: defaultToleranceSeconds,
			TrimTimeout:      defaultTrimTimeout,
		},
		Chapters: Chapters{
			MissingPolicy: defaultMissingPolicy,
		},
		Publisher: Publisher{
			BaseURL:            defaultPublisherBaseURL,
			Headless:           true,
			ActionDelayMinMs:   defaultActionDelayMinMs,
			ActionDelayMaxMs:   defaultActionDelayMaxMs,
			UploadTimeout:      defaultUploadTimeout,
			CookieCache:        true,
			EpisodeDescription: defaultEpisodeDescription,
		},
		Workflow: Workflow{
			RunTimeout:       defaultRunTimeout,
			TransientRetries: defaultTransientRetries,
			RetryBaseSeconds: defaultRetryBaseSeconds,
			RetryMaxSeconds:  defaultRetryMaxSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
