package ffmpeg

import (
	"errors"
	"os"
	"os/exec"
	"sync"
)

// BinaryPaths holds the resolved ffmpeg and ffprobe executables.
type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure resolves the ffmpeg/ffprobe binaries once per process:
// SUBWELD_FFMPEG_PATH / SUBWELD_FFPROBE_PATH take precedence, then PATH
// lookup. Segment cutting must be reproducible across runs, so only a
// pinned or system install is accepted; nothing is downloaded.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = resolve()
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func resolve() (BinaryPaths, error) {
	ffmpegPath := os.Getenv("SUBWELD_FFMPEG_PATH")
	ffprobePath := os.Getenv("SUBWELD_FFPROBE_PATH")

	if ffmpegPath == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath == "" || ffprobePath == "" {
		return BinaryPaths{}, errors.New(
			"ffmpeg and ffprobe are required: install them or set " +
				"SUBWELD_FFMPEG_PATH and SUBWELD_FFPROBE_PATH",
		)
	}

	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}
