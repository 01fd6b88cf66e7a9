// Package media isolates the audio segment for an episode from raw
// downloaded media.
//
// The heavy lifting is delegated to external tools: ffmpeg performs the
// trim and re-encode, ffprobe validates the produced artifact. Both are
// wrapped behind small interfaces (Transcoder, Prober) so the isolation
// logic can be tested without the binaries installed.
//
// Isolator coordinates the two: trim, probe the result, and reject the
// artifact when its duration strays outside the configured tolerance of
// the requested window.
package media
