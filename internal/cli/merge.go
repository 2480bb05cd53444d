package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/merge"
	"github.com/avelkar/subweld/internal/workspace"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Rebuild the subtitle track from existing fragments",
	Long: `Merge every segment fragment on disk into the global subtitle track,
shifting each by its segment offset. The track is rebuilt from scratch;
re-running on unchanged fragments produces an identical file.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	fragments := workspace.Fragments(state.Artifacts())
	if len(fragments) == 0 {
		return errors.New("no fragments to merge: run 'subweld recognize' first")
	}

	trackPath := state.GlobalTrackPath()
	if err := merge.Merge(fragments, trackPath); err != nil {
		return err
	}

	logger.Infow("subtitle track written",
		"fragments", len(fragments),
		"track", trackPath,
	)
	return nil
}
