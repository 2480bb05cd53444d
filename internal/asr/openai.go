package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/avelkar/subweld/internal/media"
	"github.com/avelkar/subweld/internal/subtitle"
)

// OpenAITranscriber uses the OpenAI Audio API.
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// segment from the verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(ctx context.Context, apiKey string, opts Options) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// Transcribe sends one segment's audio to the API and writes the returned
// segments as the SRT fragment beside it.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return "", fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if code := t.options.languageCode(); code != "" {
		params.Language = openai.String(code)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	t.options.logf("transcribing %s with %s", audioPath, t.model)

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	entries, err := t.parseVerboseJSONResponse(resp.RawJSON())
	if err != nil {
		// degraded response: fall back to one entry covering the segment
		duration, derr := media.Duration(audioPath)
		if derr != nil || strings.TrimSpace(resp.Text) == "" {
			return "", fmt.Errorf("unusable transcription response: %w", err)
		}
		entries = []subtitle.Entry{{
			Start: 0,
			End:   duration,
			Text:  strings.TrimSpace(resp.Text),
		}}
	}

	return writeFragment(audioPath, entries)
}

func (t *OpenAITranscriber) parseVerboseJSONResponse(rawJSON string) ([]subtitle.Entry, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(verboseResp.Segments) == 0 {
		return nil, fmt.Errorf("no segments in response")
	}

	entries := make([]subtitle.Entry, 0, len(verboseResp.Segments))
	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" || seg.Start >= seg.End {
			continue
		}
		entries = append(entries, subtitle.Entry{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable segments in response")
	}
	return entries, nil
}
