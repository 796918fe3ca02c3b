package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/MimeLyc/caption-transcript/pkg/icron"
	"github.com/MimeLyc/caption-transcript/pkg/log"
)

// Config holds all application configuration.
// Values come from environment variables, optionally seeded from a .env file.
//
// Environment Variables:
// yt-dlp:
// - YTDLP_PATH: yt-dlp executable (default: yt-dlp)
// - YTDLP_TIMEOUT: seconds per yt-dlp call, 0 disables (default: 0)
//
// Transcript:
// - TRANSCRIPT_LANGUAGES: caption language preference, comma separated (default: en-US,en-GB,en)
// - TRANSCRIPT_TMP_DIR: parent of per-request temp dirs (default: OS temp dir)
//
// Logging:
// - LOG_LEVEL: debug, info, warn, error, fatal (default: warn)
//
// HTTP (serve mode):
// - HTTP_ADDR: listen address (default: :8080)
// - HTTP_MAX_CONCURRENT: extractions running at once (default: 2)
// - HTTP_RATE_PER_MINUTE: new extractions admitted per minute, 0 disables (default: 0)
//
// Cache:
// - CACHE_DB_PATH: SQLite file; empty disables caching (default: empty)
// - CACHE_TTL: entry lifetime as a Go duration (default: 24h)
// - CACHE_PURGE_CRON: purge schedule in serve mode (default: @hourly)
type Config struct {
	Ytdlp      YtdlpConfig      `json:"ytdlp"`
	Transcript TranscriptConfig `json:"transcript"`
	Log        LogConfig        `json:"log"`
	HTTP       HTTPConfig       `json:"http"`
	Cache      CacheConfig      `json:"cache"`
}

type YtdlpConfig struct {
	Path    string        `json:"path"`
	Timeout time.Duration `json:"timeout"`
}

type TranscriptConfig struct {
	Languages []string `json:"languages"`
	TempDir   string   `json:"temp_dir"`
}

type LogConfig struct {
	Level string `json:"level"`
}

type HTTPConfig struct {
	Addr          string `json:"addr"`
	MaxConcurrent int    `json:"max_concurrent"`
	RatePerMinute int    `json:"rate_per_minute"`
}

type CacheConfig struct {
	DBPath    string        `json:"db_path"`
	TTL       time.Duration `json:"ttl"`
	PurgeCron string        `json:"purge_cron"`
}

func (c CacheConfig) Enabled() bool {
	return c.DBPath != ""
}

// DefaultLanguages is the caption preference order: US English, then British, then generic.
var DefaultLanguages = []string{"en-US", "en-GB", "en"}

// Option is a function type for configuring Config
type Option func(*Config)

func WithLanguages(langs ...string) Option {
	return func(c *Config) {
		c.Transcript.Languages = langs
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.Transcript.TempDir = dir
	}
}

func WithYtdlpPath(path string) Option {
	return func(c *Config) {
		c.Ytdlp.Path = path
	}
}

// Load reads the given .env files (default ".env") into the environment
// without overriding variables that are already set, then calls NewFromEnv.
// Missing files are ignored.
func Load(envFiles []string, opts ...Option) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return NewFromEnv(opts...)
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Ytdlp: YtdlpConfig{
			Path:    getEnvString("YTDLP_PATH", "yt-dlp"),
			Timeout: time.Duration(getEnvInt("YTDLP_TIMEOUT", 0)) * time.Second,
		},
		Transcript: TranscriptConfig{
			Languages: getEnvList("TRANSCRIPT_LANGUAGES", DefaultLanguages),
			TempDir:   getEnvString("TRANSCRIPT_TMP_DIR", ""),
		},
		Log: LogConfig{
			Level: getEnvString("LOG_LEVEL", "warn"),
		},
		HTTP: HTTPConfig{
			Addr:          getEnvString("HTTP_ADDR", ":8080"),
			MaxConcurrent: getEnvInt("HTTP_MAX_CONCURRENT", 2),
			RatePerMinute: getEnvInt("HTTP_RATE_PER_MINUTE", 0),
		},
		Cache: CacheConfig{
			DBPath:    getEnvString("CACHE_DB_PATH", ""),
			TTL:       getEnvDuration("CACHE_TTL", 24*time.Hour),
			PurgeCron: getEnvString("CACHE_PURGE_CRON", "@hourly"),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Debug("Config: %+v", *config)
	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if len(c.Transcript.Languages) == 0 {
		return fmt.Errorf("TRANSCRIPT_LANGUAGES must name at least one language")
	}
	for _, lang := range c.Transcript.Languages {
		if _, err := language.Parse(lang); err != nil {
			return fmt.Errorf("invalid language %q in TRANSCRIPT_LANGUAGES: %w", lang, err)
		}
	}
	if c.Ytdlp.Timeout < 0 {
		return fmt.Errorf("YTDLP_TIMEOUT must not be negative")
	}
	if c.HTTP.MaxConcurrent <= 0 {
		return fmt.Errorf("HTTP_MAX_CONCURRENT must be positive")
	}
	if c.HTTP.RatePerMinute < 0 {
		return fmt.Errorf("HTTP_RATE_PER_MINUTE must not be negative")
	}
	if c.Cache.Enabled() {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("CACHE_TTL must be positive")
		}
		if _, err := icron.Parse(c.Cache.PurgeCron); err != nil {
			return fmt.Errorf("invalid CACHE_PURGE_CRON: %w", err)
		}
	}
	return nil
}

// LanguageFamilies returns the distinct base languages of the preference
// list, e.g. ["en"] for en-US,en-GB,en. Caption tags are kept only when they
// start with one of these.
func (c TranscriptConfig) LanguageFamilies() []string {
	var families []string
	seen := make(map[string]bool)
	for _, lang := range c.Languages {
		tag, err := language.Parse(lang)
		if err != nil {
			continue
		}
		base, _ := tag.Base()
		if !seen[base.String()] {
			seen[base.String()] = true
			families = append(families, base.String())
		}
	}
	return families
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var ret []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ret = append(ret, part)
		}
	}
	return ret
}
