package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/randalmurphal/chatkit/bpe"
	"github.com/randalmurphal/chatkit/provider"
	"github.com/randalmurphal/chatkit/session"
	"github.com/randalmurphal/chatkit/tokens"
)

// FileName is the config file name inside the chatkit root.
const FileName = "config.toml"

// Config holds every chatkit setting.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Root is the directory holding sessions. Empty uses session.DefaultRoot.
	Root string `toml:"root"`

	// Tokenizer locates the BPE vocabulary.
	Tokenizer TokenizerConfig `toml:"tokenizer"`

	// Per-vendor settings.
	OpenAI    provider.Config `toml:"openai"`
	Anthropic provider.Config `toml:"anthropic"`
	Vertex    provider.Config `toml:"vertex"`
	Ollama    provider.Config `toml:"ollama"`
}

// TokenizerConfig locates the vocabulary files.
type TokenizerConfig struct {
	// EncoderPath is the path of encoder.json (optionally .gz or .zst).
	EncoderPath string `toml:"encoder"`

	// MergesPath is the path of vocab.bpe (optionally .gz or .zst).
	MergesPath string `toml:"merges"`

	// CacheLimit caps the encoder's pre-token cache.
	CacheLimit int `toml:"cache_limit"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		LogLevel: "warn",
		Tokenizer: TokenizerConfig{
			CacheLimit: bpe.DefaultCacheLimit,
		},
		OpenAI:    provider.DefaultConfig().WithModel("gpt-4o"),
		Anthropic: provider.DefaultConfig().WithModel("claude-sonnet-4-5"),
		Vertex:    provider.DefaultConfig().WithModel("gemini-2.5-flash"),
		Ollama:    provider.DefaultConfig().WithModel("llama3.2").WithBaseURL("http://localhost:11434"),
	}
	cfg.Vertex.Location = "us-central1"
	return cfg
}

// DefaultPath returns the config file path inside the default root.
func DefaultPath() (string, error) {
	root, err := session.DefaultRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, FileName), nil
}

// Load reads the config file at path (DefaultPath when empty), then
// applies .env and environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("ignoring .env", slog.Any("error", err))
	}

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg.LoadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over the current values.
func (c *Config) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", slog.String("path", path), slog.String("key", key.String()))
	}
	slog.Debug("loaded config", slog.String("path", path))
	return nil
}

// LoadFromEnv populates config fields from environment variables.
// Variables use the C_ prefix and take precedence over existing values.
//
// Supported variables:
//   - C_LOG_LEVEL: Log level
//   - C_ROOT: Root directory (sessions live in $C_ROOT/.c)
//   - C_TOKENIZER_ENCODER: encoder.json path
//   - C_TOKENIZER_MERGES: vocab.bpe path
//   - C_TOKENIZER_CACHE_LIMIT: Pre-token cache size
//   - C_{VENDOR}_*: See provider.Config.LoadFromEnv
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("C_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("C_ROOT"); v != "" {
		c.Root = filepath.Join(v, ".c")
	}
	if v := os.Getenv("C_TOKENIZER_ENCODER"); v != "" {
		c.Tokenizer.EncoderPath = v
	}
	if v := os.Getenv("C_TOKENIZER_MERGES"); v != "" {
		c.Tokenizer.MergesPath = v
	}
	if v := os.Getenv("C_TOKENIZER_CACHE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Tokenizer.CacheLimit = n
		}
	}

	for _, v := range session.Vendors {
		c.vendorPtr(v).LoadFromEnv(v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if (c.Tokenizer.EncoderPath == "") != (c.Tokenizer.MergesPath == "") {
		return fmt.Errorf("tokenizer: encoder and merges must be set together")
	}
	for _, v := range session.Vendors {
		if err := c.vendorPtr(v).Validate(); err != nil {
			return fmt.Errorf("%s: %w", v, err)
		}
	}
	return nil
}

// Vendor returns the settings of a vendor.
func (c *Config) Vendor(v session.Vendor) provider.Config {
	if p := c.vendorPtr(v); p != nil {
		return *p
	}
	return provider.DefaultConfig()
}

func (c *Config) vendorPtr(v session.Vendor) *provider.Config {
	switch v {
	case session.VendorOpenAI:
		return &c.OpenAI
	case session.VendorAnthropic:
		return &c.Anthropic
	case session.VendorVertex:
		return &c.Vertex
	case session.VendorOllama:
		return &c.Ollama
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Counter returns a BPE counter when vocabulary files are configured and
// readable, and an estimating counter otherwise.
func (t TokenizerConfig) Counter() tokens.Counter {
	if t.EncoderPath == "" {
		return tokens.NewEstimatingCounter()
	}

	enc, err := t.NewEncoder()
	if err != nil {
		slog.Warn("tokenizer unavailable, estimating token counts", slog.Any("error", err))
		return tokens.NewEstimatingCounter()
	}
	return tokens.NewBPECounter(enc)
}

// NewEncoder loads the configured vocabulary into an encoder.
func (t TokenizerConfig) NewEncoder() (*bpe.Encoder, error) {
	if t.EncoderPath == "" || t.MergesPath == "" {
		return nil, fmt.Errorf("tokenizer: encoder and merges paths are required")
	}
	return tokens.LoadEncoderFiles(expandHome(t.EncoderPath), expandHome(t.MergesPath),
		bpe.WithCacheLimit(t.CacheLimit))
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
