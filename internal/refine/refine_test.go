package refine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avelkar/subweld/internal/subtitle"
)

type fakeRefiner struct {
	results []Item
	err     error
}

func (f *fakeRefiner) Refine(ctx context.Context, items []Item) ([]Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.results != nil {
		return f.results, nil
	}
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = Item{Index: item.Index, Text: strings.ToUpper(item.Text)}
	}
	return out, nil
}

func seedTrack() *subtitle.Track {
	return &subtitle.Track{Entries: []subtitle.Entry{
		{Index: 1, Start: 1, End: 2, Text: "hello there"},
		{Index: 2, Start: 3, End: 4, Text: "second line"},
	}}
}

func TestRefineTrackRewritesTextOnly(t *testing.T) {
	track := seedTrack()

	if err := RefineTrack(context.Background(), &fakeRefiner{}, track); err != nil {
		t.Fatalf("RefineTrack failed: %v", err)
	}

	if track.Entries[0].Text != "HELLO THERE" || track.Entries[1].Text != "SECOND LINE" {
		t.Errorf("texts = %q, %q", track.Entries[0].Text, track.Entries[1].Text)
	}
	// timings and count are untouchable
	if len(track.Entries) != 2 || track.Entries[0].Start != 1 || track.Entries[1].End != 4 {
		t.Errorf("timings disturbed: %+v", track.Entries)
	}
}

func TestRefineTrackOutOfOrderResults(t *testing.T) {
	track := seedTrack()
	fake := &fakeRefiner{results: []Item{
		{Index: 1, Text: "Second line."},
		{Index: 0, Text: "Hello there."},
	}}

	if err := RefineTrack(context.Background(), fake, track); err != nil {
		t.Fatalf("RefineTrack failed: %v", err)
	}
	if track.Entries[0].Text != "Hello there." || track.Entries[1].Text != "Second line." {
		t.Errorf("texts = %q, %q", track.Entries[0].Text, track.Entries[1].Text)
	}
}

func TestRefineTrackMismatchLeavesTrackUntouched(t *testing.T) {
	cases := map[string]*fakeRefiner{
		"wrong count":   {results: []Item{{Index: 0, Text: "only one"}}},
		"unknown index": {results: []Item{{Index: 0, Text: "a"}, {Index: 7, Text: "b"}}},
		"duplicate":     {results: []Item{{Index: 0, Text: "a"}, {Index: 0, Text: "b"}}},
		"empty text":    {results: []Item{{Index: 0, Text: "a"}, {Index: 1, Text: "  "}}},
		"refiner error": {err: errors.New("api down")},
	}

	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			track := seedTrack()
			if err := RefineTrack(context.Background(), fake, track); err == nil {
				t.Fatal("expected an error")
			}
			if track.Entries[0].Text != "hello there" || track.Entries[1].Text != "second line" {
				t.Errorf("track modified on failure: %+v", track.Entries)
			}
		})
	}
}

func TestRefineTrackEmpty(t *testing.T) {
	track := &subtitle.Track{}
	if err := RefineTrack(context.Background(), &fakeRefiner{err: errors.New("must not be called")}, track); err != nil {
		t.Fatalf("empty track should short-circuit: %v", err)
	}
}

func TestBuildPromptCarriesItems(t *testing.T) {
	prompt := buildPrompt([]Item{{Index: 0, Text: "hello world"}})
	if !strings.Contains(prompt, `"hello world"`) {
		t.Error("prompt missing item text")
	}
	if !strings.Contains(prompt, "Do NOT reword") {
		t.Error("prompt missing cleanup constraint")
	}
}

func TestExtractItemsFromFencedResponse(t *testing.T) {
	raw := "```json\n[{\"index\": 0, \"text\": \"Hi.\"}]\n```"
	items, err := extractItems(cleanJSONResponse(raw))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(items) != 1 || items[0].Text != "Hi." {
		t.Errorf("items = %+v", items)
	}
}
