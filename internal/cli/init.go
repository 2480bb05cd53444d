package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/media"
	"github.com/avelkar/subweld/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init [media_file]",
	Short: "Create a workspace for a media file",
	Long: `Create a workspace, extract the audio track, and probe the media
duration. Video inputs are demuxed to WAV; audio inputs are used directly.

Examples:
  subweld init talk.mp4
  subweld init -w ./talk-ws lecture.mkv`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	mediaPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if !media.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported media file: %s", mediaPath)
	}

	if err := workspace.Init(workspaceDir); err != nil {
		return err
	}

	duration, err := media.Duration(mediaPath)
	if err != nil {
		return fmt.Errorf("failed to probe duration: %w", err)
	}

	audioPath := mediaPath
	if media.IsVideoFile(mediaPath) {
		stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
		audioPath = filepath.Join(workspaceDir, stem+".wav")

		logger.Infow("extracting audio", "media", mediaPath, "audio", audioPath)
		if err := media.ExtractAudio(
			context.Background(),
			mediaPath,
			audioPath,
			media.DefaultExtractOptions(),
		); err != nil {
			return err
		}
	}

	state := &workspace.State{
		MediaPath:     mediaPath,
		AudioPath:     audioPath,
		TotalDuration: duration,
	}
	if err := state.Save(workspaceDir); err != nil {
		return err
	}

	logger.Infow("workspace ready",
		"dir", workspaceDir,
		"duration", duration,
	)
	return nil
}
