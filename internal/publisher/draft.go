package publisher

import (
	"errors"
	"strings"
	"time"
)

// EpisodeDraft carries everything the authoring flow needs to create one
// episode. Built once by the orchestrator and consumed exactly once.
type EpisodeDraft struct {
	AudioPath     string
	Title         string
	Description   string
	ThumbnailPath string
	Explicit      bool
	Sponsored     bool
	PublishAt     *time.Time
}

// Validate rejects drafts that cannot be submitted.
func (d EpisodeDraft) Validate() error {
	if strings.TrimSpace(d.AudioPath) == "" {
		return errors.New("draft requires an audio path")
	}
	if strings.TrimSpace(d.Title) == "" {
		return errors.New("draft requires a title")
	}
	return nil
}
