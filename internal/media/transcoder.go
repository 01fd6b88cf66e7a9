package media

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"sermoncast/internal/services"
)

var commandContext = exec.CommandContext

// Transcoder produces a trimmed audio artifact from raw media. The input
// file is never modified; output is written to outputPath.
type Transcoder interface {
	Trim(ctx context.Context, inputPath, outputPath string, startSeconds, durationSeconds int) error
}

// FFmpegOption configures the CLI transcoder.
type FFmpegOption func(*FFmpegCLI)

// WithFFmpegBinary overrides the default ffmpeg binary name.
func WithFFmpegBinary(binary string) FFmpegOption {
	return func(c *FFmpegCLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithCodec overrides the default audio codec.
func WithCodec(codec string) FFmpegOption {
	return func(c *FFmpegCLI) {
		if codec != "" {
			c.codec = codec
		}
	}
}

// FFmpegCLI wraps the ffmpeg command-line transcoder.
type FFmpegCLI struct {
	binary string
	codec  string
}

// NewFFmpegCLI constructs a CLI transcoder using defaults.
func NewFFmpegCLI(opts ...FFmpegOption) *FFmpegCLI {
	cli := &FFmpegCLI{binary: "ffmpeg", codec: "libmp3lame"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Trim extracts [startSeconds, startSeconds+durationSeconds) from the input
// as an audio-only file at outputPath, overwriting any existing artifact.
func (c *FFmpegCLI) Trim(ctx context.Context, inputPath, outputPath string, startSeconds, durationSeconds int) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	if startSeconds < 0 || durationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "isolate", "ffmpeg trim",
			"window must have non-negative start and positive duration", nil)
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-ss", strconv.Itoa(startSeconds),
		"-t", strconv.Itoa(durationSeconds),
		"-vn",
		"-acodec", c.codec,
		outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrTimeout, "isolate", "ffmpeg trim", "trim cancelled", ctx.Err())
		}
		return services.Wrap(services.ErrExternalTool, "isolate", "ffmpeg trim",
			tailLines(string(output), 5), err)
	}
	return nil
}

// tailLines keeps the last n non-empty lines of tool output so error
// messages stay readable.
func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}

var _ Transcoder = (*FFmpegCLI)(nil)
