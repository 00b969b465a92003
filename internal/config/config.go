package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdstyle/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Field length limits.
const (
	MaxUserAgentLength    = 256
	MaxFallbackTextLength = 200
)

// Defaults applied by DefaultConfig.
const (
	DefaultMaxWidth = 300.0
	DefaultFormat   = FormatText
	DefaultLevel    = "info"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Config holds all configuration for the mdstyle CLI.
type Config struct {
	Image  ImageConfig  `yaml:"image"`
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// ImageConfig defines image resolution options.
type ImageConfig struct {
	MaxWidth  float64 `yaml:"maxWidth"`  // display width cap in points (default: 300)
	Timeout   string  `yaml:"timeout"`   // HTTP timeout, e.g. "30s" (empty = none)
	MaxBytes  int64   `yaml:"maxBytes"`  // response size cap (0 = library default)
	MaxPixels int     `yaml:"maxPixels"` // declared width*height cap (0 = library default)
	UserAgent string  `yaml:"userAgent"` // optional User-Agent header
}

// RenderConfig defines text rendering options.
type RenderConfig struct {
	UniformInline bool   `yaml:"uniformInline"` // inline markup on every body line
	FallbackText  string `yaml:"fallbackText"`  // empty = "[Image not available]"
}

// OutputConfig defines how documents are printed.
type OutputConfig struct {
	Format string `yaml:"format"` // "text" or "yaml" (default: "text")
}

// LogConfig defines logging options.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error" (default: "info")
}

// HTTPTimeout returns the parsed image timeout, zero when unset.
func (c *ImageConfig) HTTPTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: image.timeout: %v", ErrInvalidValue, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: image.timeout: must not be negative, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks value ranges and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if c.Image.MaxWidth < 0 {
		return fmt.Errorf("%w: image.maxWidth: must not be negative, got %.2f", ErrInvalidValue, c.Image.MaxWidth)
	}
	if c.Image.MaxBytes < 0 {
		return fmt.Errorf("%w: image.maxBytes: must not be negative, got %d", ErrInvalidValue, c.Image.MaxBytes)
	}
	if c.Image.MaxPixels < 0 {
		return fmt.Errorf("%w: image.maxPixels: must not be negative, got %d", ErrInvalidValue, c.Image.MaxPixels)
	}
	if _, err := c.Image.HTTPTimeout(); err != nil {
		return err
	}
	if err := validateFieldLength("image.userAgent", c.Image.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.fallbackText", c.Render.FallbackText, MaxFallbackTextLength); err != nil {
		return err
	}

	if c.Output.Format != "" {
		switch strings.ToLower(c.Output.Format) {
		case FormatText, FormatYAML:
			// valid
		default:
			return fmt.Errorf("%w: output.format: %q (must be text or yaml)", ErrInvalidValue, c.Output.Format)
		}
	}

	if c.Log.Level != "" {
		switch strings.ToLower(c.Log.Level) {
		case "debug", "info", "warn", "error":
			// valid
		default:
			return fmt.Errorf("%w: log.level: %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Image:  ImageConfig{MaxWidth: DefaultMaxWidth},
		Output: OutputConfig{Format: DefaultFormat},
		Log:    LogConfig{Level: DefaultLevel},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdstyle/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdstyle", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
