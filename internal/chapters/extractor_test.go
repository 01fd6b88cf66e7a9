package chapters_test

import (
	"errors"
	"testing"

	"sermoncast/internal/chapters"
)

func TestExtractStartAndEndMarkers(t *testing.T) {
	description := "1:05:30 Sermon Start\n1:52:10 Sermon End"
	window, err := chapters.Extract(description, 7200)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 3930 || window.End != 6730 {
		t.Fatalf("expected {3930 6730}, got {%d %d}", window.Start, window.End)
	}
	if window.Label != "Sermon Start" {
		t.Fatalf("unexpected label %q", window.Label)
	}
}

func TestExtractStartOnlyExtendsToMediaEnd(t *testing.T) {
	window, err := chapters.Extract("42:00 Message begins", 5000)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 2520 || window.End != 5000 {
		t.Fatalf("expected {2520 5000}, got {%d %d}", window.Start, window.End)
	}
}

func TestExtractSelectsLongestPair(t *testing.T) {
	description := "5:00 Announcements start\n10:00 Announcements end\n20:00 Sermon begins\n1:20:00 Sermon ends"
	window, err := chapters.Extract(description, 6000)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 1200 || window.End != 4800 {
		t.Fatalf("expected longest pair {1200 4800}, got {%d %d}", window.Start, window.End)
	}
}

func TestExtractDiscardsInvertedPair(t *testing.T) {
	// The only end marker precedes the start and the media ends at the start
	// offset, so no candidate survives.
	description := "30:00 Sermon ends\n1:00:00 Sermon begins"
	_, err := chapters.Extract(description, 3600)
	if !errors.Is(err, chapters.ErrNoChapter) {
		t.Fatalf("expected ErrNoChapter, got %v", err)
	}
}

func TestExtractChapterListBoundsSermonAtNextChapter(t *testing.T) {
	description := "0:00 Introduction\n5:30 Worship\n15:45 Sermon\n45:20 Closing Prayer"
	window, err := chapters.Extract(description, 3000)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 945 || window.End != 2720 {
		t.Fatalf("expected {945 2720}, got {%d %d}", window.Start, window.End)
	}
}

func TestExtractSermonLastChapterRunsToMediaEnd(t *testing.T) {
	description := "0:00 Introduction\n5:30 Worship\n15:45 Sermon"
	window, err := chapters.Extract(description, 3000)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 945 || window.End != 3000 {
		t.Fatalf("expected {945 3000}, got {%d %d}", window.Start, window.End)
	}
}

func TestExtractCaseInsensitiveKeywords(t *testing.T) {
	description := "0:00 Welcome\n5:30 SERMON\n15:45 Benediction"
	window, err := chapters.Extract(description, 3000)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 330 || window.End != 945 {
		t.Fatalf("expected {330 945}, got {%d %d}", window.Start, window.End)
	}
}

func TestExtractNoMarkers(t *testing.T) {
	cases := []struct {
		name        string
		description string
	}{
		{"empty", ""},
		{"prose only", "A simple description without any chapters."},
		{"chapters without keywords", "0:00 Welcome\n5:30 Announcements"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := chapters.Extract(tc.description, 3000); !errors.Is(err, chapters.ErrNoChapter) {
				t.Fatalf("expected ErrNoChapter, got %v", err)
			}
		})
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	description := "0:00 Prelude\n12:30 Sermon begins\n48:15 Sermon ends\n50:00 Closing"
	first, err := chapters.Extract(description, 3600)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := chapters.Extract(description, 3600)
		if err != nil {
			t.Fatalf("Extract failed on repeat: %v", err)
		}
		if again != first {
			t.Fatalf("extraction not deterministic: %#v vs %#v", again, first)
		}
	}
}

func TestExtractCapsWindowAtMediaDuration(t *testing.T) {
	description := "10:00 Sermon begins\n2:00:00 Sermon ends"
	window, err := chapters.Extract(description, 3600)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.End != 3600 {
		t.Fatalf("expected end capped at 3600, got %d", window.End)
	}
}

func TestExtractUnpaddedTimestamps(t *testing.T) {
	window, err := chapters.Extract("1:5:3 Sermon begins", 4000)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 3903 {
		t.Fatalf("expected 3903, got %d", window.Start)
	}
}

func TestWithSelectionPolicy(t *testing.T) {
	description := "5:00 Reading starts\n10:00 Reading ends\n20:00 Sermon begins\n1:20:00 Sermon ends"

	firstCandidate := func(candidates []chapters.Candidate) chapters.Candidate {
		return candidates[0]
	}
	extractor := chapters.New(chapters.WithSelectionPolicy(firstCandidate))
	window, err := extractor.Extract(description, 6000)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if window.Start != 300 || window.End != 600 {
		t.Fatalf("expected first pair {300 600}, got {%d %d}", window.Start, window.End)
	}
}
