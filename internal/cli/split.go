package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/media"
	"github.com/avelkar/subweld/internal/timecode"
	"github.com/avelkar/subweld/internal/timeline"
	"github.com/avelkar/subweld/internal/workspace"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Set cut points and cut the audio into segments",
	Long: `Set the cut points of the timeline and cut the workspace audio into
one compressed file per segment. Times accept seconds, MM:SS, or
HH:MM:SS, with optional fractions.

Replaces any previous segmentation; existing fragments for unchanged
segment files stay valid.

Examples:
  subweld split --at 300 --at 600
  subweld split --at 5:00 --at 10:00 --at 1:15:30.5`,
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().
		StringSlice("at", nil, "Cut point (repeatable; seconds, MM:SS, or HH:MM:SS)")
}

func runSplit(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetStringSlice("at")
	if len(raw) == 0 {
		return errors.New("at least one --at cut point is required")
	}

	cuts := timeline.CutPoints{}
	for _, text := range raw {
		t, err := timecode.Parse(text)
		if err != nil {
			return fmt.Errorf("bad cut point %q: %w", text, err)
		}
		if err := cuts.Add(t, state.TotalDuration); err != nil {
			if errors.Is(err, timeline.ErrDuplicateCut) {
				continue
			}
			return fmt.Errorf("bad cut point %q: %w", text, err)
		}
	}

	segments := timeline.Segments(cuts, state.TotalDuration)
	logger.Infow("cutting audio",
		"segments", len(segments),
		"cut_points", cuts.Points(),
	)

	outDir := filepath.Join(workspaceDir, workspace.SegmentsDirName)
	paths, err := media.CutAtPoints(
		context.Background(),
		state.AudioPath,
		segments,
		outDir,
		media.DefaultCompressionOptions(),
	)
	if err != nil {
		return err
	}

	state.CutPoints = cuts.Points()
	state.AudioSegments = paths
	if err := state.Save(workspaceDir); err != nil {
		return err
	}

	logger.Infow("segments ready", "count", len(paths))
	return nil
}
