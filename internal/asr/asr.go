package asr

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/avelkar/subweld/internal/subtitle"
)

// Transcriber is the boundary to one speech-recognition engine. Transcribe
// writes an SRT fragment beside the segment audio artifact, with all
// timestamps relative to the start of that segment, and returns the
// fragment path.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Provider selects a recognition engine.
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

// Language is the closed set of source-language choices. Custom carries a
// user-supplied code that participates in the same mapping as the fixed
// variants instead of being special-cased at call sites.
type Language int

const (
	LangAuto Language = iota
	LangEnglish
	LangChinese
	LangJapanese
	LangFrench
	LangGerman
	LangSpanish
	LangItalian
	LangRussian
	LangCustom
)

func (l Language) String() string {
	switch l {
	case LangAuto:
		return "auto"
	case LangEnglish:
		return "english"
	case LangChinese:
		return "chinese"
	case LangJapanese:
		return "japanese"
	case LangFrench:
		return "french"
	case LangGerman:
		return "german"
	case LangSpanish:
		return "spanish"
	case LangItalian:
		return "italian"
	case LangRussian:
		return "russian"
	case LangCustom:
		return "custom"
	default:
		return "auto"
	}
}

// Code maps the language to the code passed to the engine. Auto maps to
// the empty string, meaning the engine detects the language itself. The
// mapping is total: every variant, including Custom, goes through here.
func (l Language) Code(custom string) string {
	switch l {
	case LangEnglish:
		return "en"
	case LangChinese:
		return "zh"
	case LangJapanese:
		return "ja"
	case LangFrench:
		return "fr"
	case LangGerman:
		return "de"
	case LangSpanish:
		return "es"
	case LangItalian:
		return "it"
	case LangRussian:
		return "ru"
	case LangCustom:
		return strings.TrimSpace(custom)
	default:
		return ""
	}
}

// ParseLanguage reads a CLI or config language value. Recognized names and
// ISO codes map to fixed variants; anything else becomes Custom with the
// given value as its code; empty means auto-detect.
func ParseLanguage(s string) (Language, string) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LangAuto, ""
	case "en", "english":
		return LangEnglish, ""
	case "zh", "chinese":
		return LangChinese, ""
	case "ja", "japanese":
		return LangJapanese, ""
	case "fr", "french":
		return LangFrench, ""
	case "de", "german":
		return LangGerman, ""
	case "es", "spanish":
		return LangSpanish, ""
	case "it", "italian":
		return LangItalian, ""
	case "ru", "russian":
		return LangRussian, ""
	default:
		return LangCustom, strings.TrimSpace(s)
	}
}

// Options configure a transcriber.
type Options struct {
	Language   Language
	CustomCode string
	Model      string
	Prompt     string

	// Logf receives real-time engine output lines; optional.
	Logf func(line string)
}

func (o Options) languageCode() string {
	return o.Language.Code(o.CustomCode)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(fmt.Sprintf(format, args...))
	}
}

// fragmentPath is the fixed companion convention: the SRT fragment sits
// beside the audio artifact with the extension swapped.
func fragmentPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".srt"
}

// writeFragment persists API-produced entries as the segment's SRT
// fragment, timestamps still relative to the segment start.
func writeFragment(audioPath string, entries []subtitle.Entry) (string, error) {
	track := &subtitle.Track{Entries: entries}
	track.SortByStart()
	track.Reindex()

	path := fragmentPath(audioPath)
	if err := track.WriteFile(path); err != nil {
		return "", fmt.Errorf("failed to write fragment: %w", err)
	}
	return path, nil
}

// Factory creates a transcriber for the provider. The whisper provider
// runs a local CLI and needs no API key.
func Factory(ctx context.Context, provider Provider, apiKey string, opts Options) (Transcriber, error) {
	switch provider {
	case ProviderWhisper:
		return NewWhisperTranscriber(opts), nil
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
