package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultPath = "config/voxpress.json"

type AppConfig struct {
	Logging LoggingConfig `json:"logging"`
	Article ArticleConfig `json:"article"`
	Summary SummaryConfig `json:"summary"`
	TTS     TTSConfig     `json:"tts"`
	Store   StoreConfig   `json:"store"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type ArticleConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	UserAgent      string `json:"user_agent"`
	MinTextChars   int    `json:"min_text_chars"`
}

type SummaryConfig struct {
	APIKey    string `json:"api_key"`
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

type TTSConfig struct {
	MaxChunkChars int            `json:"max_chunk_chars"`
	Primary       PrimaryConfig  `json:"primary"`
	Fallback      FallbackConfig `json:"fallback"`
}

// PrimaryConfig configures the ElevenLabs stream-input provider.
type PrimaryConfig struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
	Voice    string `json:"voice"`
}

// FallbackConfig configures the OpenAI speech provider.
type FallbackConfig struct {
	APIKey  string  `json:"api_key"`
	BaseURL string  `json:"base_url"`
	Model   string  `json:"model"`
	Voice   string  `json:"voice"`
	Speed   float64 `json:"speed"`
}

type StoreConfig struct {
	Dir        string `json:"dir"`
	Normalize  bool   `json:"normalize"`
	FFmpegPath string `json:"ffmpeg_path"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{},
		Article: ArticleConfig{
			TimeoutSeconds: 15,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
			MinTextChars:   100,
		},
		Summary: SummaryConfig{
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4o-mini",
			MaxTokens: 400,
		},
		TTS: TTSConfig{
			MaxChunkChars: 2500,
			Primary: PrimaryConfig{
				Model: "eleven_multilingual_v2",
				Voice: "21m00Tcm4TlvDq8ikWAM",
			},
			Fallback: FallbackConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "tts-1",
				Voice:   "alloy",
				Speed:   1.0,
			},
		},
		Store: StoreConfig{
			Dir: "temp_audio",
		},
	}
}

func Load(path string) (*AppConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	// A local .env is optional; real env vars still win below.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyEnv()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func (c *AppConfig) ApplyEnv() {
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		c.Logging.Format = format
	}

	if eleven := strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")); eleven != "" {
		c.TTS.Primary.APIKey = eleven
	}

	if openai := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); openai != "" {
		c.TTS.Fallback.APIKey = openai
		if strings.TrimSpace(c.Summary.APIKey) == "" {
			c.Summary.APIKey = openai
		}
	}

	if dir := strings.TrimSpace(os.Getenv("VOXPRESS_AUDIO_DIR")); dir != "" {
		c.Store.Dir = dir
	}
}

func (c *AppConfig) Validate() error {
	if c.TTS.MaxChunkChars <= 0 {
		return errors.New("tts.max_chunk_chars must be positive")
	}
	if c.TTS.Fallback.Speed <= 0 {
		return errors.New("tts.fallback.speed must be positive")
	}
	if c.Article.TimeoutSeconds <= 0 {
		return errors.New("article.timeout_seconds must be positive")
	}
	if c.Article.MinTextChars < 0 {
		return errors.New("article.min_text_chars must be non-negative")
	}
	if strings.TrimSpace(c.Store.Dir) == "" {
		return errors.New("store.dir must not be empty")
	}
	return nil
}

// ValidateKeys checks credential presence for the collaborators a run needs.
// The fallback key doubles as the summarization key, matching the original
// deployment where one OpenAI account serves both.
func (c *AppConfig) ValidateKeys(requirePrimary, requireFallback, requireSummary bool) error {
	if requirePrimary && strings.TrimSpace(c.TTS.Primary.APIKey) == "" {
		return errors.New("primary tts api_key is required (set ELEVENLABS_API_KEY)")
	}
	if requireFallback && strings.TrimSpace(c.TTS.Fallback.APIKey) == "" {
		return errors.New("fallback tts api_key is required (set OPENAI_API_KEY)")
	}
	if requireSummary && strings.TrimSpace(c.Summary.APIKey) == "" {
		return errors.New("summary api_key is required (set OPENAI_API_KEY)")
	}
	return nil
}
