package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/ainspire/pkg/locale"
	"github.com/user/ainspire/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.IntervalSeconds != 3 {
		t.Errorf("expected interval 3, got %v", cfg.IntervalSeconds)
	}
	if cfg.JPEGQuality != 85 {
		t.Errorf("expected quality 85, got %d", cfg.JPEGQuality)
	}
	if cfg.Classifier.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model %q", cfg.Classifier.Model)
	}
	if !strings.HasSuffix(cfg.CredentialDB, filepath.Join(".ainspire", "credentials.db")) {
		t.Errorf("unexpected credential db %q", cfg.CredentialDB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ainspire.yaml")
	content := `
interval_seconds: 5
max_frame_width: 640
language: ko
classifier:
  model: gpt-4o
  timeout_seconds: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.IntervalSeconds != 5 || cfg.MaxFrameWidth != 640 || cfg.Language != "ko" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Classifier.Model != "gpt-4o" || cfg.Classifier.Timeout().Seconds() != 10 {
		t.Errorf("classifier values not applied: %+v", cfg.Classifier)
	}
	if cfg.JPEGQuality != 85 || cfg.Listen != ":8080" {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("interval_seconds: [1"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:   "sk-test",
		EnvFFmpeg:   "/opt/ffmpeg",
		EnvLanguage: "ko_KR.UTF-8",
	}
	cfg := Defaults()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.APIKey != "sk-test" || cfg.FFmpegPath != "/opt/ffmpeg" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Language != locale.Korean {
		t.Errorf("expected language normalized to ko, got %q", cfg.Language)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantInterval float64
	}{
		{"defaults", func(c *Config) {}, false, 3},
		{"interval clamped low", func(c *Config) { c.IntervalSeconds = 0.25 }, false, 1},
		{"interval clamped high", func(c *Config) { c.IntervalSeconds = 120 }, false, 30},
		{"zero interval", func(c *Config) { c.IntervalSeconds = 0 }, true, 0},
		{"quality too high", func(c *Config) { c.JPEGQuality = 101 }, true, 3},
		{"negative width", func(c *Config) { c.MaxFrameWidth = -1 }, true, 3},
		{"unsupported language", func(c *Config) { c.Language = "fr" }, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.IntervalSeconds != tt.wantInterval {
				t.Errorf("interval = %v, want %v", cfg.IntervalSeconds, tt.wantInterval)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Defaults()
	cfg.MaxFrameWidth = 800
	cfg.LogLevel = "debug"

	if cfg.Level() != ports.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level())
	}
	opts := cfg.SampleOptions()
	if opts.Quality != 85 || opts.MaxWidth != 800 {
		t.Errorf("unexpected sample options %+v", opts)
	}
	oc := cfg.ToOrchestratorConfig()
	if oc.IntervalSeconds != 3 || oc.FrameBuffer != 16 || oc.Model != "gpt-4o-mini" {
		t.Errorf("unexpected orchestrator config %+v", oc)
	}
}
