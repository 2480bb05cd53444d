package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avelkar/subweld/internal/timeline"
)

const (
	stateFileName    = "workspace_state.json"
	SegmentsDirName  = "segments"
	SubtitlesDirName = "subtitles"
)

// State is the durable snapshot of one session. It is written wholesale on
// every save and read wholesale on load; in-memory state is disposable and
// reconstructible from it plus the filesystem.
//
// CompletedSegments is advisory only: completion truth lives in fragment
// file existence and is re-derived on every load.
type State struct {
	MediaPath         string    `json:"media_path"`
	AudioPath         string    `json:"audio_path"`
	CutPoints         []float64 `json:"cut_points"`
	AudioSegments     []string  `json:"audio_segments"`
	CompletedSegments []int     `json:"completed_segments"`
	ManualSegment     string    `json:"manual_segment,omitempty"`
	ManualStart       string    `json:"manual_start,omitempty"`
	ManualEnd         string    `json:"manual_end,omitempty"`
	TotalDuration     float64   `json:"total_duration"`
	WorkspaceDir      string    `json:"workspace_dir"`
}

// Init creates the workspace directory and its conventional subfolders for
// segment audio and subtitle artifacts.
func Init(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, SegmentsDirName), 0755); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(dir, SubtitlesDirName), 0755)
}

// Exists reports whether dir holds a saved workspace.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, stateFileName))
	return err == nil
}

// Save overwrites the workspace state file with this snapshot. The
// completed list is refreshed from disk truth just before writing.
func (s *State) Save(dir string) error {
	s.WorkspaceDir = dir
	s.CompletedSegments = ScanCompletion(s.Artifacts()).Completed

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workspace state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stateFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write workspace state: %w", err)
	}
	return nil
}

// Load reads the workspace state from dir. Unknown fields are ignored and
// missing optional fields default to zero, so older state files load
// cleanly. The persisted completed list is discarded in favor of a fresh
// fragment scan.
func Load(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, stateFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse workspace state: %w", err)
	}

	state.WorkspaceDir = dir
	state.CompletedSegments = ScanCompletion(state.Artifacts()).Completed
	return &state, nil
}

// Segments derives the segment timeline from the stored cut points.
func (s *State) Segments() []timeline.Segment {
	cuts := timeline.FromSorted(s.CutPoints)
	return timeline.Segments(cuts, s.TotalDuration)
}

// Artifacts pairs every derived segment with its on-disk audio path. The
// pairing is positional at construction and explicit afterwards: filtered
// subsets keep their true indices and offsets.
func (s *State) Artifacts() []SegmentArtifact {
	segments := s.Segments()
	if len(s.AudioSegments) == 0 {
		return nil
	}

	artifacts := make([]SegmentArtifact, 0, len(segments))
	for i, seg := range segments {
		if i >= len(s.AudioSegments) {
			break
		}
		artifacts = append(artifacts, SegmentArtifact{
			Segment:   seg,
			AudioPath: s.AudioSegments[i],
		})
	}
	return artifacts
}

// GlobalTrackPath is where the consolidated subtitle track lives: beside
// the source media, with the subtitle extension.
func (s *State) GlobalTrackPath() string {
	return strings.TrimSuffix(s.MediaPath, filepath.Ext(s.MediaPath)) + ".srt"
}
