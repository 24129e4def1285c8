package provider

import (
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/chatkit/session"
)

// Config holds the settings for creating a vendor adapter and the defaults
// for new sessions of that vendor.
type Config struct {
	// --- Connection ---

	// APIKey authenticates with the vendor. Empty uses the vendor's
	// standard environment variable.
	APIKey string `json:"api_key" yaml:"api_key" toml:"api_key"`

	// BaseURL overrides the vendor endpoint. Optional.
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`

	// Project is the Google Cloud project (vertex only).
	Project string `json:"project" yaml:"project" toml:"project"`

	// Location is the Google Cloud region (vertex only).
	Location string `json:"location" yaml:"location" toml:"location"`

	// Timeout bounds a single vendor call. 0 means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`

	// --- Session defaults ---

	// Model is the model used when a session does not name one.
	Model string `json:"model" yaml:"model" toml:"model"`

	// MaxSupportedTokens is the context window for new sessions.
	// 0 derives it from the model name.
	MaxSupportedTokens int `json:"max_supported_tokens" yaml:"max_supported_tokens" toml:"max_supported_tokens"`

	// Options are default vendor options (temperature, system, ...)
	// copied into new sessions.
	Options Options `json:"options" yaml:"options" toml:"options"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Minute,
	}
}

// LoadFromEnv populates config fields from environment variables.
// Variables use the C_{VENDOR}_ prefix and take precedence over existing
// values. The vendor's standard API key variable is used when APIKey is
// still empty.
//
// Supported variables (shown for openai):
//   - C_OPENAI_API_KEY: API key
//   - C_OPENAI_BASE_URL: Endpoint override
//   - C_OPENAI_MODEL: Default model
//   - C_OPENAI_MAX_SUPPORTED_TOKENS: Context window
//   - C_OPENAI_TIMEOUT: Call timeout (e.g., "2m")
//   - C_VERTEX_PROJECT, C_VERTEX_LOCATION: Google Cloud settings
func (c *Config) LoadFromEnv(vendor session.Vendor) {
	prefix := "C_" + strings.ToUpper(string(vendor)) + "_"

	if v := os.Getenv(prefix + "API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(prefix + "BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(prefix + "MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv(prefix + "PROJECT"); v != "" {
		c.Project = v
	}
	if v := os.Getenv(prefix + "LOCATION"); v != "" {
		c.Location = v
	}
	if v := os.Getenv(prefix + "MAX_SUPPORTED_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSupportedTokens = n
		}
	}
	if v := os.Getenv(prefix + "TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}

	if c.APIKey == "" {
		for _, name := range apiKeyEnv[vendor] {
			if v := os.Getenv(name); v != "" {
				c.APIKey = v
				break
			}
		}
	}
	if vendor == session.VendorVertex {
		if c.Project == "" {
			c.Project = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}
		if c.Location == "" {
			c.Location = os.Getenv("GOOGLE_CLOUD_LOCATION")
		}
	}
}

// apiKeyEnv lists the standard credential variables of each vendor.
var apiKeyEnv = map[session.Vendor][]string{
	session.VendorOpenAI:    {"OPENAI_API_KEY"},
	session.VendorAnthropic: {"ANTHROPIC_API_KEY"},
	session.VendorVertex:    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxSupportedTokens < 0 {
		return fmt.Errorf("max_supported_tokens must be >= 0, got %d", c.MaxSupportedTokens)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if n := c.Options.GetInt(OptMaxTokens, 0); n < 0 {
		return fmt.Errorf("max_tokens must be >= 0, got %d", n)
	}
	return nil
}

// WithModel returns a copy of the config with the specified model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithAPIKey returns a copy of the config with the specified API key.
func (c Config) WithAPIKey(key string) Config {
	c.APIKey = key
	return c
}

// WithBaseURL returns a copy of the config with the specified endpoint.
func (c Config) WithBaseURL(url string) Config {
	c.BaseURL = url
	return c
}

// WithOption returns a copy of the config with the specified option set.
func (c Config) WithOption(key string, value any) Config {
	c.Options = c.Options.With(key, value)
	return c
}

// SessionOptions returns the options a new session starts with: the
// configured defaults plus the default model.
func (c Config) SessionOptions() map[string]any {
	opts := maps.Clone(map[string]any(c.Options))
	if opts == nil {
		opts = make(map[string]any)
	}
	if _, ok := opts[OptModel]; !ok && c.Model != "" {
		opts[OptModel] = c.Model
	}
	return opts
}
