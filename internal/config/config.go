// Package config loads and validates application configuration.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/avero-hq/avero/internal/common"
	"github.com/spf13/viper"
)

// Dataset source kinds.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceSQLite   = "sqlite"
	SourceSheets   = "sheets"
)

// Speech providers.
const (
	SpeechNone   = "none"
	SpeechOpenAI = "openai"
)

// Config is the fully decoded application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Server  ServerConfig  `mapstructure:"server"`
	Data    DataConfig    `mapstructure:"data"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// DataConfig selects where datasets are read from.
type DataConfig struct {
	Source     string       `mapstructure:"source"`
	Dir        string       `mapstructure:"dir"`
	SQLitePath string       `mapstructure:"sqlite_path"`
	Sheets     SheetsConfig `mapstructure:"sheets"`
	Datasets   []string     `mapstructure:"datasets"`
}

// SheetsConfig holds Google Sheets credentials for the sheets source.
type SheetsConfig struct {
	SpreadsheetID      string `mapstructure:"spreadsheet_id"`
	ServiceAccountPath string `mapstructure:"service_account_path"`
	ClientID           string `mapstructure:"client_id"`
	ClientSecret       string `mapstructure:"client_secret"`
	RefreshToken       string `mapstructure:"refresh_token"`
}

// CacheConfig sizes the per-session summary cache.
type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// SpeechConfig configures the optional speech synthesizer.
type SpeechConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Voice    string        `mapstructure:"voice"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// DefaultDatasets are the sample verticals bundled with the application.
var DefaultDatasets = []string{"therapist", "spa", "roofing"}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.source", SourceEmbedded)
	v.SetDefault("data.datasets", DefaultDatasets)
	v.SetDefault("cache.size", 32)
	v.SetDefault("speech.provider", SpeechNone)
	v.SetDefault("speech.model", "tts-1")
	v.SetDefault("speech.voice", "alloy")
	v.SetDefault("speech.timeout", 15*time.Second)
	v.SetDefault("server.addr", "127.0.0.1:8420")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	cfg.Data.Dir = ExpandPath(cfg.Data.Dir)
	cfg.Data.SQLitePath = ExpandPath(cfg.Data.SQLitePath)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)
	cfg.Data.Sheets.applyEnv()

	if cfg.Speech.Provider == SpeechOpenAI && cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv fills unset credentials from GOOGLE_SHEETS_* variables.
func (s *SheetsConfig) applyEnv() {
	s.ServiceAccountPath = ExpandPath(s.ServiceAccountPath)
	if s.ServiceAccountPath == "" {
		s.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	}
	if s.ClientID == "" {
		s.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if s.ClientSecret == "" {
		s.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if s.RefreshToken == "" {
		s.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if s.SpreadsheetID == "" {
		s.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}
}

// Validate checks the configuration for inconsistent settings.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceEmbedded:
	case SourceDir:
		if c.Data.Dir == "" {
			return fmt.Errorf("%w: data.dir is required for the dir source", common.ErrMissingConfig)
		}
	case SourceSQLite:
		if c.Data.SQLitePath == "" {
			return fmt.Errorf("%w: data.sqlite_path is required for the sqlite source", common.ErrMissingConfig)
		}
	case SourceSheets:
		if err := c.Data.Sheets.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown data.source %q", common.ErrInvalidConfig, c.Data.Source)
	}

	if len(c.Data.Datasets) == 0 {
		return fmt.Errorf("%w: data.datasets cannot be empty", common.ErrInvalidConfig)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("%w: cache.size must be positive", common.ErrInvalidConfig)
	}

	if !slices.Contains([]string{SpeechNone, SpeechOpenAI}, c.Speech.Provider) {
		return fmt.Errorf("%w: unknown speech.provider %q", common.ErrInvalidConfig, c.Speech.Provider)
	}
	if c.Speech.Provider == SpeechOpenAI && c.Speech.APIKey == "" {
		return fmt.Errorf("%w: speech.api_key is required for the openai provider", common.ErrMissingConfig)
	}
	if c.Speech.Timeout <= 0 {
		return fmt.Errorf("%w: speech.timeout must be positive", common.ErrInvalidConfig)
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	return nil
}

// Validate checks that exactly one authentication method is configured.
func (s SheetsConfig) Validate() error {
	if s.SpreadsheetID == "" {
		return fmt.Errorf("%w: data.sheets.spreadsheet_id is required", common.ErrMissingConfig)
	}

	hasOAuth := s.ClientID != "" && s.ClientSecret != "" && s.RefreshToken != ""
	hasServiceAccount := s.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no Google Sheets authentication method configured", common.ErrMissingConfig)
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}
	return nil
}
