package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the optional per-workspace settings file.
const FileName = "subweld.yaml"

// Config holds command defaults. Every field can be overridden by a flag;
// a missing file yields Default() without error.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`

	// Binary overrides; empty means env var, then PATH lookup.
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	WhisperPath string `yaml:"whisper_path"`
}

func Default() *Config {
	return &Config{
		Provider: "whisper",
		Language: "auto",
	}
}

// Load reads subweld.yaml from dir, merged over defaults. Unknown keys
// are rejected so typos surface instead of silently falling back.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return cfg, nil
}

// LoadEnv pulls a .env file into the process environment for API keys. A
// missing file is fine; real env vars are never overwritten.
func LoadEnv(dir string) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))
	_ = godotenv.Load()
}

// Export publishes the binary overrides through the env vars the binary
// resolvers read, without clobbering values the user set themselves.
func (c *Config) Export() {
	exportIfUnset("SUBWELD_FFMPEG_PATH", c.FFmpegPath)
	exportIfUnset("SUBWELD_FFPROBE_PATH", c.FFprobePath)
	exportIfUnset("SUBWELD_WHISPER_PATH", c.WhisperPath)
}

func exportIfUnset(key, value string) {
	if value == "" {
		return
	}
	if _, set := os.LookupEnv(key); set {
		return
	}
	os.Setenv(key, value)
}

// APIKey returns the env key for the given recognition provider, empty for
// providers that need none.
func APIKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}
