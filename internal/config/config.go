package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	AI     AIConfig     `toml:"ai"`
	Server ServerConfig `toml:"server"`
	Blog   BlogConfig   `toml:"blog"`
	Admin  AdminConfig  `toml:"admin"`
	Auth   AuthConfig   `toml:"auth"`
	Themes ThemesConfig `toml:"themes"`
	Log    LogConfig    `toml:"log"`
}

// AIConfig holds language model provider settings.
type AIConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	SystemPrompt   string `toml:"system_prompt"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSOrigins        []string `toml:"cors_origins"`
	RateLimitPerMinute int      `toml:"rate_limit_per_minute"`
}

// BlogConfig describes the blog whose articles are summarized.
type BlogConfig struct {
	// ArticlePathMarker precedes the article ID in article URLs, e.g.
	// "/archives/" for https://blog.example.com/archives/hello-world/.
	ArticlePathMarker string `toml:"article_path_marker"`

	// FeedURL is the blog's RSS/Atom feed, used by the feed audit.
	FeedURL string `toml:"feed_url"`
}

// AdminConfig seeds the operator account on startup.
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Email    string `toml:"email"`
}

// AuthConfig holds admin token settings.
type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
}

// ThemesConfig holds summary card theme settings.
type ThemesConfig struct {
	Dir    string `toml:"dir"`
	Active string `toml:"active"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const (
	defaultProvider     = "openai"
	defaultBaseURL      = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	defaultModel        = "qwen-plus"
	defaultSystemPrompt = "You are a blog summary assistant. Write a summary of the article that tells readers what they will find most interesting. Cover only the key points and stay under 100 words."
)

const defaultConfigContent = `[ai]
provider = "openai"               # "openai" (any OpenAI-compatible API) or "anthropic"
api_key = ""                      # Your API key (or set AI_API_KEY env var)
base_url = "https://dashscope.aliyuncs.com/compatible-mode/v1"
model = "qwen-plus"
timeout_seconds = 60

[server]
host = "0.0.0.0"
port = 4000
cors_origins = ["*"]
rate_limit_per_minute = 30

[blog]
article_path_marker = "/archives/"
feed_url = ""

[admin]
username = "admin"
password = ""                     # Or set SYNOPSIS_ADMIN_PASSWORD env var

[auth]
jwt_secret = ""                   # Or set SYNOPSIS_JWT_SECRET env var
token_ttl_minutes = 30

[themes]
dir = ""                          # Defaults to <data-dir>/themes
active = "light"

[log]
level = "info"                    # debug, info, warn, error
format = "text"                   # text or json
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("ai", "timeout_seconds") {
		if cfg.AI.TimeoutSeconds < 1 {
			return fmt.Errorf("invalid ai.timeout_seconds %d: must be >= 1", cfg.AI.TimeoutSeconds)
		}
	}
	if md.IsDefined("auth", "token_ttl_minutes") {
		if cfg.Auth.TokenTTLMinutes < 1 {
			return fmt.Errorf("invalid auth.token_ttl_minutes %d: must be >= 1", cfg.Auth.TokenTTLMinutes)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = defaultProvider
	}
	if cfg.AI.Model == "" {
		if cfg.AI.Provider == "anthropic" {
			cfg.AI.Model = "claude-haiku-4-5"
		} else {
			cfg.AI.Model = defaultModel
		}
	}
	if cfg.AI.BaseURL == "" && cfg.AI.Provider == defaultProvider {
		cfg.AI.BaseURL = defaultBaseURL
	}
	if cfg.AI.SystemPrompt == "" {
		cfg.AI.SystemPrompt = defaultSystemPrompt
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	// rate_limit_per_minute = 0 disables rate limiting, so there is no
	// default beyond what the generated config file contains.
	if cfg.Blog.ArticlePathMarker == "" {
		cfg.Blog.ArticlePathMarker = "/archives/"
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.Auth.TokenTTLMinutes == 0 {
		cfg.Auth.TokenTTLMinutes = 30
	}
	if cfg.Themes.Active == "" {
		cfg.Themes.Active = "light"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. ANTHROPIC_API_KEY (when provider is "anthropic")
//  3. OPENAI_API_KEY, then DASHSCOPE_API_KEY (when provider is "openai")
func applyEnvOverrides(cfg *Config) {
	// Apply provider-specific env var first (lower priority).
	switch cfg.AI.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("DASHSCOPE_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}

	// AI_API_KEY overrides everything (highest priority).
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	if v := os.Getenv("SYNOPSIS_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("SYNOPSIS_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

// Validate checks that configuration values are within acceptable ranges.
// It is also run on every runtime settings update.
func Validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
		// valid
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"openai\" or \"anthropic\"", cfg.AI.Provider)
	}

	if strings.TrimSpace(cfg.AI.SystemPrompt) == "" {
		return fmt.Errorf("invalid ai.system_prompt: must not be empty")
	}

	if cfg.AI.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid ai.timeout_seconds %d: must be >= 1", cfg.AI.TimeoutSeconds)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("invalid server.rate_limit_per_minute %d: must be >= 0", cfg.Server.RateLimitPerMinute)
	}

	if !strings.HasPrefix(cfg.Blog.ArticlePathMarker, "/") || !strings.HasSuffix(cfg.Blog.ArticlePathMarker, "/") {
		return fmt.Errorf("invalid blog.article_path_marker %q: must start and end with \"/\"", cfg.Blog.ArticlePathMarker)
	}

	if strings.TrimSpace(cfg.Themes.Active) == "" {
		return fmt.Errorf("invalid themes.active: must not be empty")
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be \"text\" or \"json\"", cfg.Log.Format)
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: set it in the config file or via AI_API_KEY environment variable")
	}

	return nil
}

// LogLevel maps log.level to a slog.Level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
