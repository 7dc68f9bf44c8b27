// Package config loads ottobrew's settings from a YAML file, OTTOBREW_*
// environment variables and built-in defaults, in that order of
// precedence: env over file over defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hammamikhairi/ottobrew/internal/analytics"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Config is the complete configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Brewing   BrewingConfig   `mapstructure:"brewing"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Speech    SpeechConfig    `mapstructure:"speech"`
}

// DatabaseConfig selects the catalog store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or memory
	Path   string `mapstructure:"path"`
}

// LoggingConfig controls the log level and destination.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"` // "stderr" logs to the console
}

// BrewingConfig holds defaults for new recipes and the session clock.
type BrewingConfig struct {
	DefaultGrams   int     `mapstructure:"defaultGrams"`
	DefaultRatio   float64 `mapstructure:"defaultRatio"`
	TickIntervalMs int     `mapstructure:"tickIntervalMs"`
}

// AnalyticsConfig fixes how brews are bucketed by date.
type AnalyticsConfig struct {
	WeekStart string `mapstructure:"weekStart"` // sunday or monday
	Timezone  string `mapstructure:"timezone"`  // IANA name or "Local"
}

// SpeechConfig controls spoken brew cues. Credentials come from the
// AZURE_SPEECH_KEY and AZURE_SPEECH_REGION environment variables.
type SpeechConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Voice    string `mapstructure:"voice"` // empty uses the built-in default
	CacheDir string `mapstructure:"cacheDir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(dataDir(), "ottobrew.db"),
		},
		Logging: LoggingConfig{
			Level: "normal",
			File:  filepath.Join(dataDir(), "ottobrew.log"),
		},
		Brewing: BrewingConfig{
			DefaultGrams:   15,
			DefaultRatio:   15,
			TickIntervalMs: 1000,
		},
		Analytics: AnalyticsConfig{
			WeekStart: "sunday",
			Timezone:  "Local",
		},
		Speech: SpeechConfig{
			CacheDir: filepath.Join(dataDir(), "voice-cache"),
		},
	}
}

// dataDir is where the database lives by default.
func dataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ottobrew")
	}
	return "."
}

// Load reads configuration. An explicit path must exist; without one the
// file is looked up as ottobrew.yaml in the working directory and the
// user config directory, and a missing file means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("brewing.defaultGrams", def.Brewing.DefaultGrams)
	v.SetDefault("brewing.defaultRatio", def.Brewing.DefaultRatio)
	v.SetDefault("brewing.tickIntervalMs", def.Brewing.TickIntervalMs)
	v.SetDefault("analytics.weekStart", def.Analytics.WeekStart)
	v.SetDefault("analytics.timezone", def.Analytics.Timezone)
	v.SetDefault("speech.enabled", def.Speech.Enabled)
	v.SetDefault("speech.voice", def.Speech.Voice)
	v.SetDefault("speech.cacheDir", def.Speech.CacheDir)

	v.SetEnvPrefix("OTTOBREW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ottobrew")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(dataDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case path == "" && errors.As(err, &notFound):
			// defaults and env only
		case errors.Is(err, fs.ErrNotExist):
			return nil, &ConfigError{Field: "config", Message: fmt.Sprintf("file %s does not exist", path)}
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and returns the first problem.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return &ConfigError{Field: "database.path", Message: "required for the sqlite driver"}
		}
	case "memory":
	default:
		return &ConfigError{Field: "database.driver", Message: fmt.Sprintf("unknown driver %q (want sqlite or memory)", c.Database.Driver)}
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error()}
	}
	if c.Brewing.DefaultGrams <= 0 {
		return &ConfigError{Field: "brewing.defaultGrams", Message: "must be positive"}
	}
	if c.Brewing.DefaultRatio <= 0 {
		return &ConfigError{Field: "brewing.defaultRatio", Message: "must be positive"}
	}
	if c.Brewing.TickIntervalMs <= 0 {
		return &ConfigError{Field: "brewing.tickIntervalMs", Message: "must be positive"}
	}
	if _, err := parseWeekStart(c.Analytics.WeekStart); err != nil {
		return &ConfigError{Field: "analytics.weekStart", Message: err.Error()}
	}
	if _, err := loadLocation(c.Analytics.Timezone); err != nil {
		return &ConfigError{Field: "analytics.timezone", Message: err.Error()}
	}
	return nil
}

// LogLevel returns the configured logger level.
func (c *Config) LogLevel() logger.Level {
	l, _ := logger.ParseLevel(c.Logging.Level)
	return l
}

// TickInterval is how often the brew clock advances.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Brewing.TickIntervalMs) * time.Millisecond
}

// Calendar returns the bucketing calendar. Call after Validate.
func (c *Config) Calendar() analytics.Calendar {
	ws, _ := parseWeekStart(c.Analytics.WeekStart)
	loc, _ := loadLocation(c.Analytics.Timezone)
	return analytics.Calendar{Location: loc, WeekStart: ws}
}

func parseWeekStart(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("unknown week start %q (want sunday or monday)", s)
	}
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
