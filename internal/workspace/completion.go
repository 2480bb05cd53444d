package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/avelkar/subweld/internal/merge"
	"github.com/avelkar/subweld/internal/timeline"
)

// SegmentArtifact pairs a derived segment with its audio artifact on disk.
// Index, offset and path travel together so that filtering (e.g. keeping
// only missing segments) can never silently misalign them.
type SegmentArtifact struct {
	timeline.Segment
	AudioPath string
}

// FragmentPath derives the companion subtitle fragment path by the fixed
// extension convention: the ASR engine writes <audio stem>.srt beside the
// audio artifact.
func (a SegmentArtifact) FragmentPath() string {
	return FragmentPath(a.AudioPath)
}

func FragmentPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".srt"
}

// Fragment converts the artifact into its merge input.
func (a SegmentArtifact) Fragment() merge.Fragment {
	return merge.Fragment{Path: a.FragmentPath(), Offset: a.Offset}
}

// Completion is the derived resumability state: which segment indices have
// a recognition fragment on disk and which do not. File existence is the
// sole completion signal; contents are not validated here.
type Completion struct {
	Completed []int
	Missing   []int
}

// ScanCompletion checks every artifact's fragment file.
func ScanCompletion(artifacts []SegmentArtifact) Completion {
	var c Completion
	for _, a := range artifacts {
		if _, err := os.Stat(a.FragmentPath()); err == nil {
			c.Completed = append(c.Completed, a.Index)
		} else {
			c.Missing = append(c.Missing, a.Index)
		}
	}
	return c
}

// CanResume reports whether a resume is meaningful: some work is done and
// some remains. All missing means a fresh run; none missing means there is
// nothing to do.
func (c Completion) CanResume() bool {
	return len(c.Missing) > 0 && len(c.Completed) > 0
}

// PlanResume selects the artifacts still needing recognition, in ascending
// index order. Completed fragments are never re-touched.
func PlanResume(artifacts []SegmentArtifact, c Completion) []SegmentArtifact {
	missing := make(map[int]bool, len(c.Missing))
	for _, i := range c.Missing {
		missing[i] = true
	}

	var plan []SegmentArtifact
	for _, a := range artifacts {
		if missing[a.Index] {
			plan = append(plan, a)
		}
	}
	return plan
}

// Fragments lists merge inputs for every artifact whose fragment exists.
func Fragments(artifacts []SegmentArtifact) []merge.Fragment {
	var fragments []merge.Fragment
	for _, a := range artifacts {
		if _, err := os.Stat(a.FragmentPath()); err == nil {
			fragments = append(fragments, a.Fragment())
		}
	}
	return fragments
}
