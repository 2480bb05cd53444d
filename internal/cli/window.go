package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/media"
	"github.com/avelkar/subweld/internal/run"
	"github.com/avelkar/subweld/internal/timecode"
	"github.com/avelkar/subweld/internal/workspace"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Re-recognize a time range and splice it into the track",
	Long: `Cut an arbitrary [start, end) range of the audio, recognize it, and
splice the result into the existing subtitle track: entries overlapping
the range are removed, the new entries inserted in time order.

The range is independent of segment boundaries and leaves the segment
fragments untouched.

Examples:
  subweld window --start 4:50 --end 5:40
  subweld window --start 290 --end 340 --provider gemini`,
	RunE: runWindow,
}

func init() {
	rootCmd.AddCommand(windowCmd)

	windowCmd.Flags().String("start", "", "Range start (seconds, MM:SS, or HH:MM:SS)")
	windowCmd.Flags().String("end", "", "Range end (seconds, MM:SS, or HH:MM:SS)")
	windowCmd.Flags().String("provider", "", "Recognition engine (whisper, openai, gemini)")
	windowCmd.Flags().String("model", "", "Engine model name")
	windowCmd.Flags().StringP("language", "l", "", "Source language name or code (default auto)")
	windowCmd.Flags().String("prompt", "", "Extra context prompt for the engine")

	_ = windowCmd.MarkFlagRequired("start")
	_ = windowCmd.MarkFlagRequired("end")
}

func runWindow(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	startText, _ := cmd.Flags().GetString("start")
	endText, _ := cmd.Flags().GetString("end")

	start, err := timecode.Parse(startText)
	if err != nil {
		return fmt.Errorf("bad start %q: %w", startText, err)
	}
	end, err := timecode.Parse(endText)
	if err != nil {
		return fmt.Errorf("bad end %q: %w", endText, err)
	}
	end = timecode.Clamp(end, state.TotalDuration)
	if start >= end {
		return media.ErrInvalidWindow
	}

	ctx := context.Background()
	transcriber, err := buildTranscriber(ctx, cmd)
	if err != nil {
		return err
	}

	outDir := filepath.Join(workspaceDir, workspace.SegmentsDirName)
	logger.Infow("cutting window", "start", start, "end", end)
	audioPath, err := media.CutWindow(
		ctx,
		state.AudioPath,
		start, end,
		outDir,
		media.DefaultCompressionOptions(),
	)
	if err != nil {
		return err
	}

	state.ManualSegment = audioPath
	state.ManualStart = startText
	state.ManualEnd = endText
	if err := state.Save(workspaceDir); err != nil {
		return err
	}

	runner := run.NewRunner(transcriber)
	ch, err := runner.StartWindow(ctx, audioPath, start, end, state.GlobalTrackPath())
	if err != nil {
		return err
	}

	if err := drainRun(ch); err != nil {
		return err
	}

	logger.Infow("range spliced", "track", state.GlobalTrackPath())
	return nil
}
