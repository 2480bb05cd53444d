package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/avelkar/subweld/internal/timeline"
)

func fiveArtifacts(t *testing.T) []SegmentArtifact {
	t.Helper()
	dir := t.TempDir()

	artifacts := make([]SegmentArtifact, 5)
	for i := 0; i < 5; i++ {
		artifacts[i] = SegmentArtifact{
			Segment: timeline.Segment{
				Index:    i,
				Offset:   float64(i) * 10,
				Duration: 10,
			},
			AudioPath: filepath.Join(dir, fmt.Sprintf("segment_%03d.mp3", i)),
		}
	}
	return artifacts
}

func completeSegment(t *testing.T, a SegmentArtifact) {
	t.Helper()
	content := "1\n00:00:01,000 --> 00:00:02,000\nText.\n"
	if err := os.WriteFile(a.FragmentPath(), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fragment: %v", err)
	}
}

func TestFragmentPath(t *testing.T) {
	if got := FragmentPath("/work/segments/segment_002.mp3"); got != "/work/segments/segment_002.srt" {
		t.Errorf("FragmentPath = %q", got)
	}
}

func TestScanCompletion(t *testing.T) {
	artifacts := fiveArtifacts(t)
	completeSegment(t, artifacts[1])
	completeSegment(t, artifacts[3])

	c := ScanCompletion(artifacts)

	wantCompleted := []int{1, 3}
	wantMissing := []int{0, 2, 4}
	if len(c.Completed) != 2 || c.Completed[0] != wantCompleted[0] || c.Completed[1] != wantCompleted[1] {
		t.Errorf("Completed = %v, want %v", c.Completed, wantCompleted)
	}
	if len(c.Missing) != 3 {
		t.Fatalf("Missing = %v, want %v", c.Missing, wantMissing)
	}
	for i, want := range wantMissing {
		if c.Missing[i] != want {
			t.Errorf("Missing = %v, want %v", c.Missing, wantMissing)
		}
	}

	if !c.CanResume() {
		t.Error("expected CanResume with both sets non-empty")
	}
}

func TestCanResumeEdges(t *testing.T) {
	artifacts := fiveArtifacts(t)

	// nothing done yet: fresh run, not a resume
	if c := ScanCompletion(artifacts); c.CanResume() {
		t.Error("all missing should not be resumable")
	}

	for _, a := range artifacts {
		completeSegment(t, a)
	}
	// everything done: nothing to resume
	if c := ScanCompletion(artifacts); c.CanResume() {
		t.Error("all completed should not be resumable")
	}
}

func TestPlanResume(t *testing.T) {
	artifacts := fiveArtifacts(t)
	completeSegment(t, artifacts[1])
	completeSegment(t, artifacts[3])

	plan := PlanResume(artifacts, ScanCompletion(artifacts))

	if len(plan) != 3 {
		t.Fatalf("plan has %d artifacts, want 3", len(plan))
	}
	wantIndices := []int{0, 2, 4}
	for i, a := range plan {
		if a.Index != wantIndices[i] {
			t.Errorf("plan[%d].Index = %d, want %d", i, a.Index, wantIndices[i])
		}
		// filtered artifacts keep their true offsets
		if a.Offset != float64(wantIndices[i])*10 {
			t.Errorf("plan[%d].Offset = %v, want %v", i, a.Offset, float64(wantIndices[i])*10)
		}
	}
}

func TestFragments(t *testing.T) {
	artifacts := fiveArtifacts(t)
	completeSegment(t, artifacts[0])
	completeSegment(t, artifacts[4])

	fragments := Fragments(artifacts)
	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(fragments))
	}
	if fragments[1].Offset != 40 {
		t.Errorf("fragment offset = %v, want 40", fragments[1].Offset)
	}
}
