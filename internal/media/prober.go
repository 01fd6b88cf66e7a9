package media

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"sermoncast/internal/services"
)

// Prober reports the duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFprobeCLI wraps the ffprobe command-line inspector.
type FFprobeCLI struct {
	binary string
}

// NewFFprobeCLI constructs a prober. An empty binary falls back to "ffprobe".
func NewFFprobeCLI(binary string) *FFprobeCLI {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &FFprobeCLI{binary: binary}
}

// Duration executes ffprobe against the path and returns the container
// duration in seconds.
func (c *FFprobeCLI) Duration(ctx context.Context, path string) (float64, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, errors.New("ffprobe duration: empty path")
	}

	cmd := commandContext(ctx, c.binary, "-v", "error", "-hide_banner", "-show_format", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "isolate", "ffprobe duration",
			strings.TrimSpace(string(output)), err)
	}

	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "isolate", "ffprobe duration", "parse output", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(result.Format.Duration), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "isolate", "ffprobe duration",
			"container reported no usable duration", err)
	}
	return seconds, nil
}

var _ Prober = (*FFprobeCLI)(nil)
