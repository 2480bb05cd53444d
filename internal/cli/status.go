package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/timecode"
	"github.com/avelkar/subweld/internal/workspace"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-segment recognition progress",
	Long: `Show each segment's time range and whether its subtitle fragment
exists. Completion is read from disk, so a run in another process is
reflected accurately.

With --watch, keep observing the segment directory and report fragments
as they appear.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("watch", false, "Keep watching for new fragments")
}

func runStatus(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	artifacts := state.Artifacts()
	if len(artifacts) == 0 {
		return errors.New("no segments: run 'subweld split' first")
	}

	printStatus(artifacts)

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}
	return watchStatus(artifacts)
}

func printStatus(artifacts []workspace.SegmentArtifact) {
	c := workspace.ScanCompletion(artifacts)
	done := make(map[int]bool, len(c.Completed))
	for _, i := range c.Completed {
		done[i] = true
	}

	for _, a := range artifacts {
		mark := "pending"
		if done[a.Index] {
			mark = "done"
		}
		fmt.Printf("  %3d  %s - %s  %s\n",
			a.Index,
			timecode.FormatStamp(a.Offset),
			timecode.FormatStamp(a.Offset+a.Duration),
			mark,
		)
	}
	fmt.Printf("%d/%d segments recognized\n", len(c.Completed), len(artifacts))
}

// watchStatus blocks until interrupted, reprinting the table whenever a
// fragment lands.
func watchStatus(artifacts []workspace.SegmentArtifact) error {
	watcher, err := workspace.NewFragmentWatcher(artifacts)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		for index := range watcher.Updates() {
			logger.Infow("segment recognized", "segment", index)
			printStatus(artifacts)
		}
	}()

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
