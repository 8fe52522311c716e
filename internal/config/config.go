package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	appName = "proxymancer"

	DefaultOutput     = "proxies.pdf"
	DefaultDPI        = 300
	DefaultAPIBaseURL = "https://api.scryfall.com"
	DefaultUserAgent  = "proxymancer/1.0"

	MinDPI = 72
	MaxDPI = 1200
)

// Config represents the application configuration
type Config struct {
	DefaultOutput      string   `toml:"default_output"`
	DPI                int      `toml:"dpi"`
	CacheDir           string   `toml:"cache_dir"`
	APIBaseURL         string   `toml:"api_base_url"`
	UserAgent          string   `toml:"user_agent"`
	ImageSizes         []string `toml:"image_sizes"`
	RequestIntervalMS  int      `toml:"request_interval_ms"`
	HTTPTimeoutSeconds int      `toml:"http_timeout_seconds"`
	Fuzzy              bool     `toml:"fuzzy"`
	CutGuides          bool     `toml:"cut_guides"`
	CutGuideColor      string   `toml:"cut_guide_color"`
	LogLevel           string   `toml:"log_level"`
	LogFormat          string   `toml:"log_format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DefaultOutput:      DefaultOutput,
		DPI:                DefaultDPI,
		APIBaseURL:         DefaultAPIBaseURL,
		UserAgent:          DefaultUserAgent,
		ImageSizes:         []string{"png", "large", "normal"},
		RequestIntervalMS:  100,
		HTTPTimeoutSeconds: 30,
		CutGuideColor:      "#b0b0b0",
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// RequestInterval returns the minimum spacing between API requests
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMS) * time.Millisecond
}

// HTTPTimeout returns the per-request timeout
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// ResolvedCacheDir returns the configured cache directory or the XDG default
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return expandHome(c.CacheDir)
	}
	return GetCacheDir()
}

// GuideColor parses CutGuideColor into 8-bit RGB components
func (c *Config) GuideColor() (r, g, b uint8, err error) {
	col, err := colorful.Hex(c.CutGuideColor)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid cut_guide_color %q: %w", c.CutGuideColor, err)
	}
	r, g, b = col.RGB255()
	return r, g, b, nil
}

// Validate checks the configuration for values the pipeline cannot use
func (c *Config) Validate() error {
	var problems []error
	if c.DPI < MinDPI || c.DPI > MaxDPI {
		problems = append(problems, fmt.Errorf("dpi must be between %d and %d, got %d", MinDPI, MaxDPI, c.DPI))
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		problems = append(problems, errors.New("api_base_url must not be empty"))
	}
	if c.HTTPTimeoutSeconds <= 0 {
		problems = append(problems, errors.New("http_timeout_seconds must be positive"))
	}
	if c.RequestIntervalMS < 0 {
		problems = append(problems, errors.New("request_interval_ms must not be negative"))
	}
	if _, _, _, err := c.GuideColor(); err != nil {
		problems = append(problems, err)
	}
	return errors.Join(problems...)
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetCacheDir returns the default image cache directory
func GetCacheDir() string {
	return filepath.Join(GetXDGCacheHome(), appName, "images")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), appName, "config.toml")
}

// LoadConfig loads the config file, creating it with defaults if missing
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(GetConfigFilePath())
}

// LoadConfigFrom loads the config file at configPath. Keys missing from the
// file keep their default values.
func LoadConfigFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	config := Default()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	return config, nil
}

// createDefaultConfig writes a default config file
func createDefaultConfig(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Default()
	if err := Save(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save encodes config as TOML to configPath
func Save(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
