package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/avelkar/subweld/internal/ffmpeg"
	"github.com/avelkar/subweld/internal/timeline"
)

// ErrInvalidWindow reports a requested cut window whose start is not
// strictly before its end.
var ErrInvalidWindow = errors.New("invalid window: start must be before end")

// settings for the audio stream fed to the ASR engine
type CompressionOptions struct {
	Format     string
	SampleRate int
	Channels   int
	Bitrate    string
}

// mono 16k mp3: small uploads, enough for speech recognition
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// settings for the full extracted audio kept beside the workspace
type ExtractOptions struct {
	SampleRate int
	Channels   int
}

func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		SampleRate: 44100,
		Channels:   2,
	}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration probes the length of a media file in seconds.
func Duration(path string) (float64, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", path)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return seconds, nil
}

// ExtractAudio pulls the audio track out of a media file into a WAV file
// next to outputPath's directory.
func ExtractAudio(ctx context.Context, mediaPath, outputPath string, opts ExtractOptions) error {
	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("media file not found: %s", mediaPath)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	kwargs := ffmpeggo.KwArgs{
		"vn":     "",
		"acodec": "pcm_s16le",
		"ar":     opts.SampleRate,
		"ac":     opts.Channels,
		"y":      "",
	}

	err = ffmpeggo.Input(mediaPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}

// CutAtPoints cuts the audio into one compressed file per derived segment,
// written to outDir as segment_000.mp3, segment_001.mp3, ... positionally
// aligned with the segment list. Segments are cut strictly sequentially so
// a cancelled run leaves a clean prefix of finished files.
func CutAtPoints(
	ctx context.Context,
	audioPath string,
	segments []timeline.Segment,
	outDir string,
	opts CompressionOptions,
) ([]string, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create segment directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outPath := filepath.Join(outDir,
			fmt.Sprintf("segment_%03d.%s", seg.Index, opts.Format))

		kwargs := compressionKwargs(opts)
		kwargs["ss"] = seg.Offset
		kwargs["t"] = seg.Duration

		err := ffmpeggo.Input(audioPath).
			Output(outPath, kwargs).
			OverWriteOutput().
			SetFfmpegPath(ffmpegPath).
			Run()
		if err != nil {
			return nil, fmt.Errorf("failed to cut segment %d: %w", seg.Index, err)
		}
		paths = append(paths, outPath)
	}

	return paths, nil
}

// CutWindow cuts an arbitrary [start, end) window of the audio into one
// compressed file for ad-hoc recognition. The window is independent of any
// segment boundary.
func CutWindow(
	ctx context.Context,
	audioPath string,
	start, end float64,
	outDir string,
	opts CompressionOptions,
) (string, error) {
	if start >= end {
		return "", ErrInvalidWindow
	}
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return "", fmt.Errorf("audio file not found: %s", audioPath)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outPath := filepath.Join(outDir,
		fmt.Sprintf("%s_manual_%.2f_%.2f.%s", stem, start, end, opts.Format))

	kwargs := compressionKwargs(opts)
	kwargs["ss"] = start
	kwargs["t"] = end - start

	err = ffmpeggo.Input(audioPath).
		Output(outPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return "", fmt.Errorf("failed to cut window: %w", err)
	}
	return outPath, nil
}

func compressionKwargs(opts CompressionOptions) ffmpeggo.KwArgs {
	kwargs := ffmpeggo.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
		"y":  "",
	}

	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs
}

// IsVideoFile checks the extension against common video containers.
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
	}
	return videoExts[ext]
}

// IsAudioFile checks the extension against common audio formats.
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".opus": true,
	}
	return audioExts[ext]
}

// IsMediaFile checks if the file is either audio or video.
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
