package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avelkar/subweld/internal/asr"
	"github.com/avelkar/subweld/internal/config"
	"github.com/avelkar/subweld/internal/logging"
	"github.com/avelkar/subweld/internal/run"
	"github.com/avelkar/subweld/internal/workspace"
)

var (
	workspaceDir string
	verbose      bool
	logger       *logging.Logger
	cfg          *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subweld",
	Short: "Segmented speech recognition with resumable subtitle merging",
	Long: `Subweld cuts long recordings into segments, recognizes them one at a
time, and welds the per-segment subtitles into a single time-consistent
SRT track.

Interrupted runs resume from the segments already finished, and any time
range can be re-recognized and spliced back into the track.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		config.LoadEnv(workspaceDir)
		var err error
		cfg, err = config.Load(workspaceDir)
		if err != nil {
			return err
		}
		cfg.Export()
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&workspaceDir, "workspace", "w", ".", "Workspace directory")
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func loadState() (*workspace.State, error) {
	if !workspace.Exists(workspaceDir) {
		return nil, fmt.Errorf(
			"no workspace found in %s: run 'subweld init <media>' first",
			workspaceDir,
		)
	}
	return workspace.Load(workspaceDir)
}

// buildTranscriber resolves provider settings from flags over config file
// values and constructs the recognition engine.
func buildTranscriber(ctx context.Context, cmd *cobra.Command) (asr.Transcriber, error) {
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	prompt, _ := cmd.Flags().GetString("prompt")

	if provider == "" {
		provider = cfg.Provider
	}
	if model == "" {
		model = cfg.Model
	}
	if language == "" {
		language = cfg.Language
	}

	lang, customCode := asr.ParseLanguage(language)
	opts := asr.Options{
		Language:   lang,
		CustomCode: customCode,
		Model:      model,
		Prompt:     prompt,
		Logf: func(line string) {
			logger.Debugw("engine", "line", line)
		},
	}

	return asr.Factory(ctx, asr.Provider(provider), config.APIKey(provider), opts)
}

// drainRun consumes run messages on the foreground goroutine until the
// channel closes, logging each. The first error is returned after the run
// finishes; later segments still ran.
func drainRun(ch <-chan run.Message) error {
	var firstErr error
	for msg := range ch {
		switch msg.Kind {
		case run.KindProgress:
			logger.Infow("progress", "percent", fmt.Sprintf("%.0f%%", msg.Fraction*100))
		case run.KindSegmentResult:
			logger.Infow("segment recognized",
				"segment", msg.SegmentIndex,
				"fragment", msg.FragmentPath,
			)
		case run.KindLog:
			logger.Debugw(msg.Text)
		case run.KindError:
			if msg.SegmentIndex >= 0 {
				logger.Errorw("segment failed",
					"segment", msg.SegmentIndex,
					"error", msg.Err,
				)
			} else {
				logger.Errorw("run error", "error", msg.Err)
			}
			if firstErr == nil {
				firstErr = msg.Err
			}
		case run.KindCompleted:
			logger.Debugw("run finished", "run_id", msg.RunID)
		}
	}
	return firstErr
}
