// Package config loads legalchain settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/csheth/legalchain/internal/backend"
	"github.com/csheth/legalchain/internal/export"
	"github.com/csheth/legalchain/internal/llm"
	"github.com/csheth/legalchain/internal/submit"
)

const (
	EnvConfigPath = "LEGALCHAIN_CONFIG"
	EnvOutDir     = "LEGALCHAIN_OUT_DIR"
	EnvLogFile    = "LEGALCHAIN_LOG_FILE"

	configDirName  = "legalchain"
	configFileName = "config.toml"
)

// Config is the full set of runtime options.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Export  ExportConfig  `toml:"export"`
	Server  ServerConfig  `toml:"server"`
	LLM     LLMConfig     `toml:"llm"`
	Log     LogConfig     `toml:"log"`
}

// BackendConfig points the client at the generation service.
type BackendConfig struct {
	Endpoint string   `toml:"endpoint"`
	Timeout  Duration `toml:"timeout"`
}

// ExportConfig controls artifact location and page geometry.
type ExportConfig struct {
	OutDir         string  `toml:"out_dir"`
	Margin         float64 `toml:"margin"`
	LineHeight     float64 `toml:"line_height"`
	PageFormat     string  `toml:"page_format"`
	Orientation    string  `toml:"orientation"`
	FontFamily     string  `toml:"font_family"`
	FontSize       float64 `toml:"font_size"`
	BreakLongWords *bool   `toml:"break_long_words"`
}

// ServerConfig configures the reference backend.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	RequestsPerSec  float64  `toml:"requests_per_second"`
	Burst           int      `toml:"burst"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// LLMConfig configures the Anthropic client used by the reference backend.
type LLMConfig struct {
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
}

// LogConfig selects where diagnostics go while the TUI owns the terminal.
type LogConfig struct {
	File string `toml:"file"`
}

// Duration decodes TOML strings such as "90s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			Endpoint: backend.DefaultEndpoint,
			Timeout:  Duration{submit.DefaultTimeout},
		},
		Export: ExportConfig{
			OutDir:      ".",
			Margin:      export.DefaultMargin,
			LineHeight:  export.DefaultLineHeight,
			PageFormat:  export.DefaultPageFormat,
			Orientation: export.DefaultOrientation,
			FontFamily:  export.DefaultFontFamily,
			FontSize:    export.DefaultFontSize,
		},
		Server: ServerConfig{
			Addr:            ":5000",
			RequestsPerSec:  1,
			Burst:           5,
			ShutdownTimeout: Duration{10 * time.Second},
		},
		LLM: LLMConfig{
			Temperature: llm.DefaultTemperature,
			Timeout:     Duration{3 * time.Minute},
		},
		Log: LogConfig{
			File: filepath.Join(os.TempDir(), "legalchain.log"),
		},
	}
}

// LoadInfo reports where the configuration came from.
type LoadInfo struct {
	Path  string
	Found bool
}

// Load reads the config file (explicit path, then LEGALCHAIN_CONFIG, then the
// user config dir), layers it over the defaults and applies env overrides. A
// missing file at the default location is not an error.
func Load(path string) (Config, LoadInfo, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfigPath); env != "" {
			path = env
			explicit = true
		} else {
			path = DefaultPath()
		}
	}
	info := LoadInfo{Path: path}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Default(), info, fmt.Errorf("parse %s: %w", path, err)
			}
			info.Found = true
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Default(), info, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()
	if _, err := cfg.Layout(); err != nil {
		return Default(), info, fmt.Errorf("export settings: %w", err)
	}
	return cfg, info, nil
}

// DefaultPath is config.toml under the user config directory, or "" when the
// directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName, configFileName)
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(backend.EndpointEnvVar)); v != "" {
		c.Backend.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutDir)); v != "" {
		c.Export.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		c.Log.File = v
	}
}

// Layout resolves the export section into page geometry.
func (c Config) Layout() (export.Layout, error) {
	return export.NewLayout(export.Options{
		Margin:         &c.Export.Margin,
		LineHeight:     c.Export.LineHeight,
		PageFormat:     c.Export.PageFormat,
		Orientation:    c.Export.Orientation,
		FontFamily:     c.Export.FontFamily,
		FontSize:       c.Export.FontSize,
		BreakLongWords: c.Export.BreakLongWords,
	})
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
