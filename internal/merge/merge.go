package merge

import (
	"errors"
	"fmt"
	"os"

	"github.com/avelkar/subweld/internal/subtitle"
)

// ErrMissingFragment reports a merge input that does not exist on disk,
// usually a stale completion record.
var ErrMissingFragment = errors.New("fragment missing")

// Fragment is one per-segment subtitle file whose timestamps are relative
// to its own segment start. Offset is the segment's position in the whole
// media and is added to every entry during the merge.
type Fragment struct {
	Path   string
	Offset float64
}

// Merge welds the fragments into one global track and writes it to
// outputPath, fully overwriting any previous file there.
//
// The merged track is constructed completely in memory before a single
// write, so a failed merge never leaves a half-written output and any
// previously existing file stays untouched on error. Entries that overrun
// their segment's nominal duration are merged verbatim, never clamped.
// Re-running with identical inputs produces byte-identical output.
func Merge(fragments []Fragment, outputPath string) error {
	merged := &subtitle.Track{}

	for _, frag := range fragments {
		if _, err := os.Stat(frag.Path); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingFragment, frag.Path)
		}

		track, err := subtitle.ParseFile(frag.Path)
		if err != nil {
			return fmt.Errorf("failed to parse fragment %s: %w", frag.Path, err)
		}

		track.Shift(frag.Offset)
		merged.Entries = append(merged.Entries, track.Entries...)
	}

	merged.SortByStart()
	merged.Reindex()

	if err := merged.WriteFile(outputPath); err != nil {
		return fmt.Errorf("failed to write merged track: %w", err)
	}
	return nil
}
