// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	LLM           LLMConfig           `yaml:"llm"`
	Search        SearchConfig        `yaml:"search"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	RateLimits    RateLimitConfig     `yaml:"rate_limits"`
	Logging       LoggingConfig       `yaml:"logging"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	EnableUI       bool     `yaml:"enable_ui"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite
	Path   string `yaml:"path"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider"` // gemini, openai, anthropic, ollama
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"` // overrides the provider's public endpoint
	OllamaURL string        `yaml:"ollama_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

type SearchConfig struct {
	Provider             string        `yaml:"provider"` // duckduckgo, wikipedia, pubmed
	BaseURL              string        `yaml:"base_url"`
	Limit                int           `yaml:"limit"`
	Timeout              time.Duration `yaml:"timeout"`
	ExcerptTimeout       time.Duration `yaml:"excerpt_timeout"`
	MaxConcurrentFetches int           `yaml:"max_concurrent_fetches"`
	UserAgent            string        `yaml:"user_agent"`
}

type TranscriptionConfig struct {
	Command       string `yaml:"command"`
	Script        string `yaml:"script"`
	UploadDir     string `yaml:"upload_dir"`
	TranscriptDir string `yaml:"transcript_dir"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type TelemetryConfig struct {
	SentryDSN        string  `yaml:"sentry_dsn"`
	Environment      string  `yaml:"environment"`
	TracesSampleRate float64 `yaml:"traces_sample_rate"`
}

// envOverrides are read once at startup. Each key is looked up as
// FACTLENS_<KEY> first and then as the bare <KEY>, so PORT and
// GEMINI_API_KEY work the same way they do for the browser demo.
type envOverrides struct {
	Port         int    `envconfig:"PORT"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	LLMAPIKey    string `envconfig:"LLM_API_KEY"`
	LLMProvider  string `envconfig:"LLM_PROVIDER"`
	LLMModel     string `envconfig:"LLM_MODEL"`
	DatabasePath string `envconfig:"DATABASE_PATH"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	SentryDSN    string `envconfig:"SENTRY_DSN"`
	Environment  string `envconfig:"ENVIRONMENT"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           5000,
			EnableUI:       true,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   2 << 20,
			MaxUploadBytes: 512 << 20,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/factlens.db",
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Timeout:  120 * time.Second,
		},
		Search: SearchConfig{
			Provider:             "duckduckgo",
			Limit:                4,
			Timeout:              15 * time.Second,
			ExcerptTimeout:       8 * time.Second,
			MaxConcurrentFetches: 3,
			UserAgent:            "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Transcription: TranscriptionConfig{
			Command:       "python",
			Script:        "transcribe.py",
			UploadDir:     "./uploads",
			TranscriptDir: "./transcripts",
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Environment:      "development",
			TracesSampleRate: 1.0,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, a
// .env file in the working directory and the process environment, in that
// order of precedence (later wins). An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s (run 'factlens config init' to create one)", path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		content := interpolateEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("FACTLENS", &env); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.LLMProvider != "" {
		c.LLM.Provider = env.LLMProvider
	}
	if env.LLMModel != "" {
		c.LLM.Model = env.LLMModel
	}
	if env.LLMAPIKey != "" {
		c.LLM.APIKey = env.LLMAPIKey
	}
	if c.LLM.APIKey == "" && c.LLM.Provider == "gemini" {
		c.LLM.APIKey = env.GeminiAPIKey
	}
	if env.DatabasePath != "" {
		c.Database.Path = env.DatabasePath
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.SentryDSN != "" {
		c.Telemetry.SentryDSN = env.SentryDSN
	}
	if env.Environment != "" {
		c.Telemetry.Environment = env.Environment
	}
	return nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# factlens configuration
# Values may reference environment variables as ${NAME}.

server:
  port: 5000
  enable_ui: true
  allowed_origins: ["http://localhost:3000"]
  max_body_bytes: 2097152
  max_upload_bytes: 536870912

database:
  driver: sqlite
  path: ./data/factlens.db

llm:
  provider: gemini  # gemini, openai, anthropic, ollama
  model: gemini-2.5-flash
  api_key: ${GEMINI_API_KEY}
  timeout: 120s

  # For OpenAI:
  # provider: openai
  # model: gpt-4o-mini
  # api_key: ${OPENAI_API_KEY}

  # For Anthropic Claude:
  # provider: anthropic
  # model: claude-3-haiku-20240307
  # api_key: ${ANTHROPIC_API_KEY}

  # For Ollama (local):
  # provider: ollama
  # model: llama3
  # ollama_url: http://localhost:11434

search:
  provider: duckduckgo  # duckduckgo, wikipedia, pubmed
  limit: 4
  timeout: 15s
  excerpt_timeout: 8s
  max_concurrent_fetches: 3

transcription:
  command: python
  script: transcribe.py
  upload_dir: ./uploads
  transcript_dir: ./transcripts

rate_limits:
  requests_per_minute: 60

logging:
  level: info  # debug, info, warn, error
  format: json # json or text

telemetry:
  sentry_dsn: ${SENTRY_DSN}
  environment: development
  traces_sample_rate: 1.0
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	validProviders := map[string]bool{"gemini": true, "openai": true, "anthropic": true, "ollama": true}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}

	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY)")
		}
	case "openai":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("OpenAI API key is required")
		}
	case "anthropic":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("Anthropic API key is required")
		}
	}

	validSearch := map[string]bool{"duckduckgo": true, "wikipedia": true, "pubmed": true}
	if !validSearch[c.Search.Provider] {
		return fmt.Errorf("unsupported search provider: %s", c.Search.Provider)
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("search limit must be positive: %d", c.Search.Limit)
	}
	if c.Search.MaxConcurrentFetches < 1 {
		return fmt.Errorf("max_concurrent_fetches must be positive: %d", c.Search.MaxConcurrentFetches)
	}
	if c.Search.ExcerptTimeout <= 0 {
		return fmt.Errorf("excerpt_timeout must be positive")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
// Unset variables become empty strings.
func interpolateEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		return os.Getenv(varName)
	})
}
