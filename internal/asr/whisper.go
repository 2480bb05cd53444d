package asr

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WhisperTranscriber drives the local whisper CLI. The CLI itself writes
// the SRT file beside the audio, so the fragment convention falls out of
// its --output_dir behavior.
type WhisperTranscriber struct {
	binary  string
	options Options
}

func NewWhisperTranscriber(opts Options) *WhisperTranscriber {
	binary := os.Getenv("SUBWELD_WHISPER_PATH")
	if binary == "" {
		binary = "whisper"
	}

	if opts.Model == "" {
		opts.Model = "base"
	}

	return &WhisperTranscriber{
		binary:  binary,
		options: opts,
	}
}

// Transcribe runs whisper on one segment. Engine progress lines are
// streamed to the options log sink as they arrive. Cancelling the context
// hard-kills the process; a fragment it already finished writing stays
// valid for a later resume.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return "", fmt.Errorf("audio file not found: %s", audioPath)
	}

	outputDir := filepath.Dir(audioPath)
	args := []string{
		audioPath,
		"--model", t.options.Model,
		"--output_format", "srt",
		"--output_dir", outputDir,
	}
	if code := t.options.languageCode(); code != "" {
		args = append(args, "--language", code)
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)

	// whisper reports progress on stderr
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start whisper: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			t.options.logf("%s", line)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("whisper recognition failed: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	fragmentPath := filepath.Join(outputDir, stem+".srt")
	if _, err := os.Stat(fragmentPath); err != nil {
		return "", fmt.Errorf("whisper produced no subtitle file at %s", fragmentPath)
	}

	return fragmentPath, nil
}
