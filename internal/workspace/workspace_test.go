package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCreatesLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ws")
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, sub := range []string{SegmentsDirName, SubtitlesDirName} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil || !info.IsDir() {
			t.Errorf("missing workspace subdir %s", sub)
		}
	}

	if Exists(dir) {
		t.Error("Exists should be false before first save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	segDir := filepath.Join(dir, SegmentsDirName)
	state := &State{
		MediaPath: "/media/talk.mp4",
		AudioPath: "/media/talk.wav",
		CutPoints: []float64{30, 75},
		AudioSegments: []string{
			filepath.Join(segDir, "segment_000.mp3"),
			filepath.Join(segDir, "segment_001.mp3"),
			filepath.Join(segDir, "segment_002.mp3"),
		},
		ManualStart:   "1:10",
		ManualEnd:     "1:25",
		TotalDuration: 100,
	}

	if err := state.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !Exists(dir) {
		t.Fatal("Exists should be true after save")
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.MediaPath != state.MediaPath || loaded.TotalDuration != 100 {
		t.Errorf("loaded state mismatch: %+v", loaded)
	}
	if len(loaded.CutPoints) != 2 || loaded.CutPoints[1] != 75 {
		t.Errorf("cut points mismatch: %v", loaded.CutPoints)
	}
	if loaded.ManualStart != "1:10" || loaded.ManualEnd != "1:25" {
		t.Errorf("manual window mismatch: %+v", loaded)
	}
	if loaded.WorkspaceDir != dir {
		t.Errorf("WorkspaceDir = %q, want %q", loaded.WorkspaceDir, dir)
	}
}

func TestLoadRederivesCompletion(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	segDir := filepath.Join(dir, SegmentsDirName)
	seg0 := filepath.Join(segDir, "segment_000.mp3")
	seg1 := filepath.Join(segDir, "segment_001.mp3")

	fragment := "1\n00:00:01,000 --> 00:00:02,000\nDone.\n"
	if err := os.WriteFile(FragmentPath(seg0), []byte(fragment), 0644); err != nil {
		t.Fatalf("failed to write fragment: %v", err)
	}

	// state file persisted with a stale claim: segment 1 completed, the
	// actually-finished segment 0 absent
	stateJSON := `{
  "media_path": "/media/talk.mp4",
  "cut_points": [10],
  "audio_segments": [` + "\n    " +
		`"` + seg0 + `",` + "\n    " + `"` + seg1 + `"` + "\n  " + `],
  "completed_segments": [1],
  "total_duration": 20
}`
	if err := os.WriteFile(filepath.Join(dir, stateFileName), []byte(stateJSON), 0644); err != nil {
		t.Fatalf("failed to write state file: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// disk truth wins: only segment 0 has a fragment
	if len(loaded.CompletedSegments) != 1 || loaded.CompletedSegments[0] != 0 {
		t.Errorf("CompletedSegments = %v, want [0]", loaded.CompletedSegments)
	}
}

func TestSegmentsDerivation(t *testing.T) {
	state := &State{CutPoints: []float64{30, 75}, TotalDuration: 100}
	segments := state.Segments()
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}
	if segments[1].Offset != 30 || segments[1].Duration != 45 {
		t.Errorf("segment 1 = %+v", segments[1])
	}
}

func TestArtifactsPairing(t *testing.T) {
	state := &State{
		CutPoints:     []float64{10},
		TotalDuration: 20,
		AudioSegments: []string{"/w/segments/segment_000.mp3", "/w/segments/segment_001.mp3"},
	}

	artifacts := state.Artifacts()
	if len(artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(artifacts))
	}
	if artifacts[1].Index != 1 || artifacts[1].Offset != 10 {
		t.Errorf("artifact 1 = %+v", artifacts[1])
	}
	if artifacts[1].FragmentPath() != "/w/segments/segment_001.srt" {
		t.Errorf("fragment path = %q", artifacts[1].FragmentPath())
	}
}

func TestGlobalTrackPath(t *testing.T) {
	state := &State{MediaPath: "/media/talk.mp4"}
	if got := state.GlobalTrackPath(); got != "/media/talk.srt" {
		t.Errorf("GlobalTrackPath = %q", got)
	}
}
