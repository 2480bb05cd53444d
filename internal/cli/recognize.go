package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/run"
	"github.com/avelkar/subweld/internal/workspace"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Recognize segments and merge the subtitle track",
	Long: `Run speech recognition over the audio segments, strictly in order,
then merge every finished fragment into the global subtitle track next
to the source media.

Each finished segment leaves an SRT fragment beside its audio file;
fragments survive interruption, and --resume picks up only the segments
that have none yet.

Examples:
  subweld recognize
  subweld recognize --provider openai --language ja
  subweld recognize --resume
  subweld recognize --segment 3`,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().String("provider", "", "Recognition engine (whisper, openai, gemini)")
	recognizeCmd.Flags().String("model", "", "Engine model name")
	recognizeCmd.Flags().StringP("language", "l", "", "Source language name or code (default auto)")
	recognizeCmd.Flags().String("prompt", "", "Extra context prompt for the engine")
	recognizeCmd.Flags().Bool("resume", false, "Recognize only segments without a fragment")
	recognizeCmd.Flags().Int("segment", -1, "Recognize a single segment by index")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	artifacts := state.Artifacts()
	if len(artifacts) == 0 {
		return errors.New("no segments: run 'subweld split' first")
	}

	ctx := context.Background()
	transcriber, err := buildTranscriber(ctx, cmd)
	if err != nil {
		return err
	}

	resume, _ := cmd.Flags().GetBool("resume")
	segmentIndex, _ := cmd.Flags().GetInt("segment")

	runner := run.NewRunner(transcriber)
	trackPath := state.GlobalTrackPath()

	var ch <-chan run.Message
	switch {
	case segmentIndex >= 0:
		ch, err = runner.StartSegment(ctx, artifacts, segmentIndex, trackPath)

	case resume:
		c := workspace.ScanCompletion(artifacts)
		if len(c.Missing) == 0 {
			logger.Infow("all segments already recognized",
				"segments", len(artifacts),
			)
			return nil
		}
		if len(c.Completed) == 0 {
			logger.Infow("nothing to resume, starting a full run")
			ch, err = runner.StartFull(ctx, artifacts, trackPath)
		} else {
			logger.Infow("resuming",
				"completed", len(c.Completed),
				"remaining", len(c.Missing),
			)
			ch, err = runner.StartResume(ctx, artifacts, c, trackPath)
		}

	default:
		ch, err = runner.StartFull(ctx, artifacts, trackPath)
	}
	if err != nil {
		return err
	}

	runErr := drainRun(ch)

	if err := state.Save(workspaceDir); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	logger.Infow("subtitle track written", "track", trackPath)
	return nil
}
