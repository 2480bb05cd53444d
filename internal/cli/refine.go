package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/refine"
	"github.com/avelkar/subweld/internal/subtitle"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Clean up the subtitle track text with Claude",
	Long: `Send the merged track's entry texts to Claude for punctuation and
casing cleanup. Timings, ordering, and entry count never change; on any
mismatch the track is left as it was.

Requires ANTHROPIC_API_KEY in the environment or the workspace .env.

Examples:
  subweld refine
  subweld refine --model claude-sonnet-4-5 --batch-size 25`,
	RunE: runRefine,
}

func init() {
	rootCmd.AddCommand(refineCmd)

	refineCmd.Flags().String("model", "", "Claude model name")
	refineCmd.Flags().Int("batch-size", 0, "Entries per API request")
}

func runRefine(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	trackPath := state.GlobalTrackPath()
	track, err := subtitle.ParseFile(trackPath)
	if err != nil {
		return fmt.Errorf("no subtitle track to refine: %w", err)
	}

	model, _ := cmd.Flags().GetString("model")
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	refiner, err := refine.NewAnthropicRefiner(
		os.Getenv("ANTHROPIC_API_KEY"),
		model,
		batchSize,
	)
	if err != nil {
		return err
	}

	logger.Infow("refining track", "entries", len(track.Entries))
	if err := refine.RefineTrack(context.Background(), refiner, track); err != nil {
		return err
	}

	if err := track.WriteFile(trackPath); err != nil {
		return err
	}
	logger.Infow("track refined", "track", trackPath)
	return nil
}
