package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	track, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(track.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(track.Entries))
	}

	if track.Entries[0].Start != 1.0 {
		t.Errorf("entry 0: expected start 1.0, got %v", track.Entries[0].Start)
	}
	if track.Entries[0].End != 4.0 {
		t.Errorf("entry 0: expected end 4.0, got %v", track.Entries[0].End)
	}
	if track.Entries[0].Text != "Hello, world!" {
		t.Errorf("entry 0: expected 'Hello, world!', got %q", track.Entries[0].Text)
	}

	expectedText := "This is a test.\nWith multiple lines."
	if track.Entries[1].Text != expectedText {
		t.Errorf("entry 1: expected %q, got %q", expectedText, track.Entries[1].Text)
	}
}

func TestParseStripsBOM(t *testing.T) {
	content := "\uFEFF1\n00:00:01,000 --> 00:00:02,000\nText\n"
	track, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(track.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(track.Entries))
	}
}

func TestParseLenient(t *testing.T) {
	// the first block's index line is followed immediately by another index
	// line: that block is dropped, not a parse failure
	content := `1
2
00:00:05,000 --> 00:00:06,000
Survivor.
`
	track, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(track.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(track.Entries))
	}
	if track.Entries[0].Text != "Survivor." {
		t.Errorf("expected 'Survivor.', got %q", track.Entries[0].Text)
	}
}

func TestParseSkipsMalformedBlock(t *testing.T) {
	content := `1
not a timestamp line
2
00:00:05,000 --> 00:00:06,000
Good block.

3
99:99 --> broken
ignored text

4
00:00:10,000 --> 00:00:11,000
Another good one.
`
	track, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(track.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(track.Entries))
	}
	if track.Entries[0].Text != "Good block." {
		t.Errorf("entry 0: got %q", track.Entries[0].Text)
	}
	if track.Entries[1].Text != "Another good one." {
		t.Errorf("entry 1: got %q", track.Entries[1].Text)
	}
}

func TestParseRejectsInvertedInterval(t *testing.T) {
	content := `1
00:00:05,000 --> 00:00:04,000
Backwards.
`
	_, err := Parse(strings.NewReader(content))
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestRender(t *testing.T) {
	track := &Track{Entries: []Entry{
		{Index: 1, Start: 1, End: 4, Text: "Hello, world!"},
		{Index: 2, Start: 5.5, End: 8.2, Text: "Two\nlines."},
	}}

	want := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
Two
lines.

`
	if got := track.Render(); got != want {
		t.Errorf("Render mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	track := &Track{Entries: []Entry{
		{Index: 1, Start: 0.25, End: 2.75, Text: "First"},
		{Index: 2, Start: 3, End: 4.001, Text: "Second\nline"},
	}}

	parsed, err := Parse(strings.NewReader(track.Render()))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(parsed.Entries) != len(track.Entries) {
		t.Fatalf("expected %d entries, got %d", len(track.Entries), len(parsed.Entries))
	}
	for i, e := range parsed.Entries {
		orig := track.Entries[i]
		if e.Start != orig.Start || e.End != orig.End || e.Text != orig.Text {
			t.Errorf("entry %d: got %+v, want %+v", i, e, orig)
		}
	}
}

func TestWriteFileAndParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out", "track.srt")

	track := &Track{Entries: []Entry{
		{Index: 1, Start: 1, End: 2, Text: "Persisted"},
	}}
	if err := track.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(loaded.Entries) != 1 || loaded.Entries[0].Text != "Persisted" {
		t.Errorf("unexpected loaded track: %+v", loaded.Entries)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.srt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "track.srt")
	if err := os.WriteFile(path, []byte("stale contents"), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	track := &Track{Entries: []Entry{{Index: 1, Start: 0, End: 1, Text: "Fresh"}}}
	if err := track.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if strings.Contains(string(data), "stale") {
		t.Error("old contents not overwritten")
	}
}
