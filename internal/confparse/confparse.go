// Package confparse decodes configuration files in YAML or TOML behind one
// size-limited API, so callers never import a parser directly.
package confparse

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// MaxInputSize limits input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

// Format is a configuration file syntax.
type Format string

// Supported formats.
const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

var (
	ErrNilData          = errors.New("confparse: nil or empty data")
	ErrNilDestination   = errors.New("confparse: nil destination pointer")
	ErrInputTooLarge    = errors.New("confparse: input exceeds maximum size")
	ErrUnknownFormat    = errors.New("confparse: unknown format")
	ErrUnknownField     = errors.New("confparse: unknown field")
	ErrUnsupportedValue = errors.New("confparse: value cannot be encoded")
)

// Extensions lists the file extensions recognized by FormatOf, in search
// order.
var Extensions = []string{".yaml", ".yml", ".toml"}

// FormatOf returns the format for a file path by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data into v, ignoring unknown fields.
func Unmarshal(f Format, data []byte, v any) error {
	return decode(f, data, v, false)
}

// UnmarshalStrict decodes data into v and rejects unknown fields.
func UnmarshalStrict(f Format, data []byte, v any) error {
	return decode(f, data, v, true)
}

func decode(f Format, data []byte, v any, strict bool) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	switch f {
	case YAML:
		var opts []yaml.DecodeOption
		if strict {
			opts = append(opts, yaml.Strict())
		}
		if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
			return fmt.Errorf("confparse: yaml: %w", err)
		}
		return nil
	case TOML:
		meta, err := toml.Decode(string(data), v)
		if err != nil {
			return fmt.Errorf("confparse: toml: %w", err)
		}
		if undecoded := meta.Undecoded(); strict && len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(keys, ", "))
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Marshal encodes v in format f.
func Marshal(f Format, v any) ([]byte, error) {
	switch f {
	case YAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("confparse: yaml: %w", err)
		}
		return out, nil
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
