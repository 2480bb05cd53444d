package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "whisper" || cfg.Language != "auto" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "provider: openai\nmodel: whisper-1\nffmpeg_path: /opt/bin/ffmpeg\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "openai" || cfg.Model != "whisper-1" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.FFmpegPath != "/opt/bin/ffmpeg" {
		t.Errorf("ffmpeg path = %q", cfg.FFmpegPath)
	}
	// untouched keys keep their defaults
	if cfg.Language != "auto" {
		t.Errorf("language = %q, want default", cfg.Language)
	}
}

func TestLoadEmptyFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), nil, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "whisper" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	content := "provder: openai\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for a misspelled key")
	}
}

func TestExportRespectsExistingEnv(t *testing.T) {
	t.Setenv("SUBWELD_FFMPEG_PATH", "/user/ffmpeg")
	t.Setenv("SUBWELD_WHISPER_PATH", "")
	os.Unsetenv("SUBWELD_WHISPER_PATH")

	cfg := &Config{FFmpegPath: "/cfg/ffmpeg", WhisperPath: "/cfg/whisper"}
	cfg.Export()

	if got := os.Getenv("SUBWELD_FFMPEG_PATH"); got != "/user/ffmpeg" {
		t.Errorf("explicit env overwritten: %q", got)
	}
	if got := os.Getenv("SUBWELD_WHISPER_PATH"); got != "/cfg/whisper" {
		t.Errorf("unset env not filled from config: %q", got)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if got := APIKey("openai"); got != "sk-test" {
		t.Errorf("APIKey(openai) = %q", got)
	}
	if got := APIKey("whisper"); got != "" {
		t.Errorf("APIKey(whisper) = %q, want empty", got)
	}
}
