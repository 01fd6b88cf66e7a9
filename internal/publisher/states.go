package publisher

import "fmt"

// State is a position in the authoring flow. The happy path runs strictly
// forward; Closed is entered exactly once at teardown from any state.
type State int

const (
	StateInit State = iota
	StateLoggedIn
	StateDraftCreated
	StateMetadataFilled
	StateAudioUploaded
	StateThumbnailUploaded
	StateSaved
	StateClosed
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoggedIn:
		return "logged_in"
	case StateDraftCreated:
		return "draft_created"
	case StateMetadataFilled:
		return "metadata_filled"
	case StateAudioUploaded:
		return "audio_uploaded"
	case StateThumbnailUploaded:
		return "thumbnail_uploaded"
	case StateSaved:
		return "saved"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transitions is the allowed forward-edge table. ThumbnailUploaded is an
// optional hop, so both AudioUploaded→ThumbnailUploaded→Saved and
// AudioUploaded→Saved are legal.
var transitions = map[State][]State{
	StateInit:              {StateLoggedIn},
	StateLoggedIn:          {StateDraftCreated},
	StateDraftCreated:      {StateMetadataFilled},
	StateMetadataFilled:    {StateAudioUploaded},
	StateAudioUploaded:     {StateThumbnailUploaded, StateSaved},
	StateThumbnailUploaded: {StateSaved},
	StateSaved:             {},
}

// CanTransition reports whether from→to is a legal forward edge. Closed is
// reachable from every state because teardown always runs.
func CanTransition(from, to State) bool {
	if to == StateClosed {
		return from != StateClosed
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
