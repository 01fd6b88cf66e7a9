package chapters

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoChapter is returned when the description yields no usable window.
// Caller policy decides whether that aborts the run or publishes the full
// recording; this package never decides.
var ErrNoChapter = errors.New("no chapter markers found")

// chapterLine matches a timestamp token at the start of a line followed by a
// label. Accepts H:MM:SS and MM:SS with or without zero padding.
var chapterLine = regexp.MustCompile(`^\s*(\d{1,2}(?::\d{1,2}){1,2})\s+(.+?)\s*$`)

var startKeywords = []string{"start", "begin", "message", "sermon"}
var endKeywords = []string{"end", "finish"}

type markerKind int

const (
	markerChapter markerKind = iota // timestamp line with no classifying keyword
	markerStart
	markerEnd
)

type marker struct {
	offset int
	label  string
	kind   markerKind
}

// Candidate is a potential window assembled from markers. Offsets are seconds
// from the start of the media.
type Candidate struct {
	Start int
	End   int
	Label string
}

// SelectionPolicy picks the winning candidate when several windows are viable.
// Candidates arrive in description order and are never empty.
type SelectionPolicy func([]Candidate) Candidate

// LongestSpan selects the candidate covering the most time. The sermon is
// assumed to be the longest labeled segment; earlier candidates win ties.
func LongestSpan(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.End-c.Start > best.End-best.Start {
			best = c
		}
	}
	return best
}

// Extractor turns free-text descriptions into chapter windows. The zero value
// is not usable; construct with New.
type Extractor struct {
	policy SelectionPolicy
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithSelectionPolicy overrides the default longest-span candidate selection.
func WithSelectionPolicy(policy SelectionPolicy) Option {
	return func(e *Extractor) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// New constructs an Extractor with the default selection policy.
func New(opts ...Option) *Extractor {
	e := &Extractor{policy: LongestSpan}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans the description for timestamped lines and derives the window
// bounding the segment of interest. durationSeconds caps the window and closes
// start-only markers. Extraction is a pure function of its inputs.
func (e *Extractor) Extract(description string, durationSeconds int) (Window, error) {
	markers := scanMarkers(description)
	if len(markers) == 0 {
		return Window{}, ErrNoChapter
	}

	candidates := buildCandidates(markers, durationSeconds)
	if len(candidates) == 0 {
		return Window{}, ErrNoChapter
	}

	winner := e.policy(candidates)
	window := Window{
		Start: winner.Start,
		End:   winner.End,
		Label: winner.Label,
	}
	if durationSeconds > 0 && window.End > durationSeconds {
		window.End = durationSeconds
	}
	if window.End <= window.Start {
		return Window{}, ErrNoChapter
	}
	return window, nil
}

// Extract runs extraction with the default policy.
func Extract(description string, durationSeconds int) (Window, error) {
	return New().Extract(description, durationSeconds)
}

// scanMarkers walks the description line by line, collecting every timestamp
// token together with its label and keyword classification.
func scanMarkers(description string) []marker {
	var markers []marker
	for _, line := range strings.Split(description, "\n") {
		match := chapterLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		offset, ok := parseTimestamp(match[1])
		if !ok {
			continue
		}
		label := match[2]
		markers = append(markers, marker{
			offset: offset,
			label:  label,
			kind:   classify(label),
		})
	}
	return markers
}

// classify maps a label onto a marker kind. End keywords take precedence so
// that a label like "Sermon End" reads as an end marker despite containing a
// start keyword.
func classify(label string) markerKind {
	lowered := strings.ToLower(label)
	for _, keyword := range endKeywords {
		if strings.Contains(lowered, keyword) {
			return markerEnd
		}
	}
	for _, keyword := range startKeywords {
		if strings.Contains(lowered, keyword) {
			return markerStart
		}
	}
	return markerChapter
}

// buildCandidates pairs each start marker with its closing boundary. An
// explicit end marker after the start wins; otherwise the next chapter line
// bounds the segment, and a start with nothing after it runs to end of media.
// Pairs whose end does not exceed their start are discarded, not fatal.
func buildCandidates(markers []marker, durationSeconds int) []Candidate {
	var candidates []Candidate
	for i, m := range markers {
		if m.kind != markerStart {
			continue
		}

		end := -1
		for _, later := range markers[i+1:] {
			if later.kind == markerEnd && later.offset > m.offset {
				end = later.offset
				break
			}
		}
		if end < 0 {
			for _, later := range markers[i+1:] {
				if later.offset > m.offset {
					end = later.offset
					break
				}
			}
		}
		if end < 0 {
			end = durationSeconds
		}

		if end <= m.offset {
			continue
		}
		candidates = append(candidates, Candidate{Start: m.offset, End: end, Label: m.label})
	}
	return candidates
}

// parseTimestamp converts "H:MM:SS" or "MM:SS" into seconds.
func parseTimestamp(token string) (int, bool) {
	parts := strings.Split(token, ":")
	total := 0
	for _, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return 0, false
		}
		total = total*60 + value
	}
	return total, true
}
