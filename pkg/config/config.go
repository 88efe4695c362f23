// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/user/ainspire/pkg/locale"
	"github.com/user/ainspire/pkg/orchestrator"
	"github.com/user/ainspire/pkg/ports"
	"github.com/user/ainspire/pkg/stages/sample"
	"gopkg.in/yaml.v3"
)

// Recommended capture interval range, in seconds.
const (
	MinIntervalSeconds = 1
	MaxIntervalSeconds = 30
)

// Environment variables that override file values.
const (
	EnvAPIKey   = "AINSPIRE_API_KEY"
	EnvFFmpeg   = "FFMPEG_PATH"
	EnvLanguage = "AINSPIRE_LANG"
)

// Config represents the full configuration for ainspire.
type Config struct {
	// Sampling
	IntervalSeconds float64 `yaml:"interval_seconds"`
	JPEGQuality     int     `yaml:"jpeg_quality"`
	MaxFrameWidth   int     `yaml:"max_frame_width"`
	FFmpegPath      string  `yaml:"ffmpeg_path"`
	FrameBuffer     int     `yaml:"frame_buffer"`

	// Classification
	Classifier ClassifierConfig `yaml:"classifier"`

	// CredentialDB is the sqlite file holding the classifier key.
	CredentialDB string `yaml:"credential_db"`
	// APIKey is only ever read from the environment.
	APIKey string `yaml:"-"`

	// Presentation
	Language string `yaml:"language"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Server
	Listen string `yaml:"listen"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// ClassifierConfig configures the vision model.
type ClassifierConfig struct {
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Sampling
		IntervalSeconds: 3,
		JPEGQuality:     85,
		FrameBuffer:     16,

		// Classification
		Classifier: ClassifierConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		CredentialDB: defaultCredentialDB(),

		// Presentation
		Language: locale.English,
		LogLevel: "info",

		// Server
		Listen: ":8080",

		// Debug
		DebugDir: "./debug",
	}
}

func defaultCredentialDB() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".ainspire", "credentials.db")
	}
	return filepath.Join(home, ".ainspire", "credentials.db")
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides values from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := getenv(EnvFFmpeg); v != "" {
		c.FFmpegPath = v
	}
	if v := getenv(EnvLanguage); v != "" {
		c.Language = v
	}
}

// Validate checks the configuration and normalizes the language.
// Out of range intervals are clamped rather than rejected.
func (c *Config) Validate() error {
	var errs []error

	if math.IsNaN(c.IntervalSeconds) || c.IntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("interval_seconds must be positive, got %v", c.IntervalSeconds))
	} else {
		c.IntervalSeconds = ClampInterval(c.IntervalSeconds)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality))
	}
	if c.MaxFrameWidth < 0 {
		errs = append(errs, fmt.Errorf("max_frame_width must not be negative, got %d", c.MaxFrameWidth))
	}
	if c.FrameBuffer < 0 {
		errs = append(errs, fmt.Errorf("frame_buffer must not be negative, got %d", c.FrameBuffer))
	}
	if c.Classifier.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("classifier.timeout_seconds must not be negative, got %d", c.Classifier.TimeoutSeconds))
	}

	if lang := locale.Normalize(c.Language); lang == "" {
		errs = append(errs, fmt.Errorf("%w: %q", locale.ErrUnsupportedLanguage, c.Language))
	} else {
		c.Language = lang
	}

	return errors.Join(errs...)
}

// ClampInterval limits seconds to the recommended range.
func ClampInterval(seconds float64) float64 {
	return math.Min(math.Max(seconds, MinIntervalSeconds), MaxIntervalSeconds)
}

// Level returns the parsed log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// SampleOptions converts Config to sample.Options.
func (c Config) SampleOptions() sample.Options {
	return sample.Options{
		Quality:  c.JPEGQuality,
		MaxWidth: c.MaxFrameWidth,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		IntervalSeconds: c.IntervalSeconds,
		FrameBuffer:     c.FrameBuffer,
		JPEGQuality:     c.JPEGQuality,
		MaxFrameWidth:   c.MaxFrameWidth,
		Model:           c.Classifier.Model,
	}
}
