package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-tex2pdf/internal/confparse"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEX2PDF_"

// Field length limits.
const (
	MaxNameLength        = 100  // style, backend, mode names
	MaxPathLength        = 4096 // filesystem paths
	MaxURLLength         = 2048 // browser limit
	MaxPageSizeLength    = 10   // "letter", "a4", "legal"
	MaxOrientationLength = 10   // "portrait", "landscape"
	MaxDateFormatLength  = 30   // "YYYY-MM-DD_HH-mm"
	MaxAddrLength        = 255  // host:port
	MaxTOCTitleLength    = 100  // TOC title
	MaxLangLength        = 35   // BCP 47 tag
)

// Accepted values for enumerated fields. Empty means default.
var (
	MathBackends = []string{"builtin", "katex"}
	ExportModes  = []string{"raster", "print"}
	Orientations = []string{"portrait", "landscape"}
)

// Config holds all configuration for rendering and export.
type Config struct {
	Style   string        `yaml:"style" toml:"style"`
	Lang    string        `yaml:"lang" toml:"lang"`
	Timeout string        `yaml:"timeout" toml:"timeout"` // Go duration, e.g. "30s"
	Assets  AssetsConfig  `yaml:"assets" toml:"assets"`
	Math    MathConfig    `yaml:"math" toml:"math"`
	Page    PageConfig    `yaml:"page" toml:"page"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	TOC     TOCConfig     `yaml:"toc" toml:"toc"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Preview PreviewConfig `yaml:"preview" toml:"preview"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath" toml:"basePath"` // Empty = use embedded assets
}

// MathConfig selects and tunes the math backend.
type MathConfig struct {
	Backend         string `yaml:"backend" toml:"backend"`                 // "builtin" (default) or "katex"
	KaTeXScript     string `yaml:"katexScript" toml:"katexScript"`         // URL or local file
	KaTeXStylesheet string `yaml:"katexStylesheet" toml:"katexStylesheet"` // URL or local file
	CacheSize       int    `yaml:"cacheSize" toml:"cacheSize"`             // 0 = default, negative disables
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size" toml:"size"`               // "letter", "a4", "legal" (default: "a4")
	Orientation string  `yaml:"orientation" toml:"orientation"` // "portrait", "landscape" (default: "portrait")
	Margin      float64 `yaml:"margin" toml:"margin"`           // inches (default: 0.5)
}

// ExportConfig defines PDF export options.
type ExportConfig struct {
	Mode       string  `yaml:"mode" toml:"mode"`             // "raster" (default) or "print"
	Scale      float64 `yaml:"scale" toml:"scale"`           // raster device scale factor, 0 = default
	OutputDir  string  `yaml:"outputDir" toml:"outputDir"`   // Empty = next to the source
	DateFormat string  `yaml:"dateFormat" toml:"dateFormat"` // appended to artifact names when set
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Title    string `yaml:"title" toml:"title"`       // Empty = no title above TOC
	MaxDepth int    `yaml:"maxDepth" toml:"maxDepth"` // 1-2, default 2
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`         // default ":8080"
	StoreDir string `yaml:"storeDir" toml:"storeDir"` // Empty = no persistence
}

// PreviewConfig defines terminal preview options.
type PreviewConfig struct {
	Interval string `yaml:"interval" toml:"interval"` // polling interval, Go duration
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., API adapters, library users).
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"style", c.Style, MaxNameLength},
		{"lang", c.Lang, MaxLangLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"math.backend", c.Math.Backend, MaxNameLength},
		{"math.katexScript", c.Math.KaTeXScript, MaxURLLength},
		{"math.katexStylesheet", c.Math.KaTeXStylesheet, MaxURLLength},
		{"page.size", c.Page.Size, MaxPageSizeLength},
		{"page.orientation", c.Page.Orientation, MaxOrientationLength},
		{"export.mode", c.Export.Mode, MaxNameLength},
		{"export.outputDir", c.Export.OutputDir, MaxPathLength},
		{"export.dateFormat", c.Export.DateFormat, MaxDateFormatLength},
		{"toc.title", c.TOC.Title, MaxTOCTitleLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"server.storeDir", c.Server.StoreDir, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if err := validateOneOf("math.backend", c.Math.Backend, MathBackends); err != nil {
		return err
	}
	if err := validateOneOf("export.mode", c.Export.Mode, ExportModes); err != nil {
		return err
	}
	if err := validateOneOf("page.orientation", c.Page.Orientation, Orientations); err != nil {
		return err
	}

	if c.Page.Margin < 0 || c.Page.Margin > 3 {
		return fmt.Errorf("%w: page.margin must be between 0 and 3 inches, got %.2f", ErrInvalidValue, c.Page.Margin)
	}
	if c.Export.Scale != 0 && (c.Export.Scale < 0.5 || c.Export.Scale > 4) {
		return fmt.Errorf("%w: export.scale must be between 0.5 and 4, got %.2f", ErrInvalidValue, c.Export.Scale)
	}
	if c.TOC.Enabled && c.TOC.MaxDepth != 0 && (c.TOC.MaxDepth < 1 || c.TOC.MaxDepth > 2) {
		return fmt.Errorf("%w: toc.maxDepth must be 1 or 2, got %d", ErrInvalidValue, c.TOC.MaxDepth)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.PreviewInterval(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. It returns zero when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout)
}

// PreviewInterval parses Preview.Interval. It returns zero when unset.
func (c *Config) PreviewInterval() (time.Duration, error) {
	return parseDuration("preview.interval", c.Preview.Interval)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive duration, got %q", ErrInvalidValue, field, value)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateOneOf(fieldName, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidValue, fieldName, strings.Join(allowed, ", "), value)
}

// DefaultConfig returns a neutral configuration: embedded assets, built-in
// math backend, library page defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// ApplyEnv overrides fields from TEX2PDF_* variables. lookup is usually
// os.LookupEnv. The result is validated.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"STYLE":            &c.Style,
		"LANG":             &c.Lang,
		"TIMEOUT":          &c.Timeout,
		"ASSETS_PATH":      &c.Assets.BasePath,
		"MATH_BACKEND":     &c.Math.Backend,
		"KATEX_SCRIPT":     &c.Math.KaTeXScript,
		"KATEX_STYLESHEET": &c.Math.KaTeXStylesheet,
		"PAGE_SIZE":        &c.Page.Size,
		"PAGE_ORIENTATION": &c.Page.Orientation,
		"EXPORT_MODE":      &c.Export.Mode,
		"OUTPUT_DIR":       &c.Export.OutputDir,
		"DATE_FORMAT":      &c.Export.DateFormat,
		"SERVER_ADDR":      &c.Server.Addr,
		"STORE_DIR":        &c.Server.StoreDir,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"PAGE_MARGIN":  &c.Page.Margin,
		"EXPORT_SCALE": &c.Export.Scale,
	}
	for key, dst := range floats {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalidValue, EnvPrefix, key, v)
			}
			*dst = f
		}
	}

	if v, ok := lookup(EnvPrefix + "CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_SIZE=%q is not an integer", ErrInvalidValue, EnvPrefix, v)
		}
		c.Math.CacheSize = n
	}

	return c.Validate()
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
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

	format, err := confparse.FormatOf(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	var cfg Config
	if err := confparse.UnmarshalStrict(format, data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, ~/.config/go-tex2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := confparse.Extensions
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
			userPath := filepath.Join(userConfigDir, "go-tex2pdf", name+ext)
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
