package confparse_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-tex2pdf/internal/confparse"
)

type testConfig struct {
	Name    string `yaml:"name" toml:"name"`
	Count   int    `yaml:"count" toml:"count"`
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Nested  struct {
		Key string `yaml:"key" toml:"key"`
	} `yaml:"nested" toml:"nested"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Both formats decode into the same struct
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format confparse.Format
		data   string
	}{
		{
			name:   "yaml",
			format: confparse.YAML,
			data:   "name: 日本語\ncount: 42\nenabled: true\nnested:\n  key: v\n",
		},
		{
			name:   "toml",
			format: confparse.TOML,
			data:   "name = \"日本語\"\ncount = 42\nenabled = true\n[nested]\nkey = \"v\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var cfg testConfig
			if err := confparse.UnmarshalStrict(tt.format, []byte(tt.data), &cfg); err != nil {
				t.Fatalf("UnmarshalStrict() error = %v", err)
			}
			if cfg.Name != "日本語" || cfg.Count != 42 || !cfg.Enabled || cfg.Nested.Key != "v" {
				t.Errorf("decoded %+v", cfg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshal_Errors
// ---------------------------------------------------------------------------

func TestUnmarshal_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  confparse.Format
		data    []byte
		dest    any
		strict  bool
		wantErr error
		wantMsg string
	}{
		{name: "nil data", format: confparse.YAML, dest: &testConfig{}, wantErr: confparse.ErrNilData},
		{name: "nil destination", format: confparse.TOML, data: []byte("name = \"x\""), wantErr: confparse.ErrNilDestination},
		{name: "unknown format", format: "ini", data: []byte("x"), dest: &testConfig{}, wantErr: confparse.ErrUnknownFormat},
		{name: "invalid yaml", format: confparse.YAML, data: []byte("name: [unclosed"), dest: &testConfig{}, wantMsg: "confparse: yaml:"},
		{name: "invalid toml", format: confparse.TOML, data: []byte("name = "), dest: &testConfig{}, wantMsg: "confparse: toml:"},
		{name: "strict yaml unknown field", format: confparse.YAML, data: []byte("name: x\nbogus: 1"), dest: &testConfig{}, strict: true, wantMsg: "confparse: yaml:"},
		{name: "strict toml unknown field", format: confparse.TOML, data: []byte("name = \"x\"\nbogus = 1"), dest: &testConfig{}, strict: true, wantErr: confparse.ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var err error
			if tt.strict {
				err = confparse.UnmarshalStrict(tt.format, tt.data, tt.dest)
			} else {
				err = confparse.Unmarshal(tt.format, tt.data, tt.dest)
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestUnmarshal_LenientIgnoresUnknown(t *testing.T) {
	t.Parallel()

	for _, f := range []confparse.Format{confparse.YAML, confparse.TOML} {
		data := "name: x\nbogus: 1"
		if f == confparse.TOML {
			data = "name = \"x\"\nbogus = 1"
		}
		var cfg testConfig
		if err := confparse.Unmarshal(f, []byte(data), &cfg); err != nil || cfg.Name != "x" {
			t.Errorf("Unmarshal(%s) = %+v, %v", f, cfg, err)
		}
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte("name: " + strings.Repeat("a", confparse.MaxInputSize))
	err := confparse.Unmarshal(confparse.YAML, data, &testConfig{})
	if !errors.Is(err, confparse.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestRoundTrip
// ---------------------------------------------------------------------------

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range []confparse.Format{confparse.YAML, confparse.TOML} {
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()

			in := testConfig{Name: "round", Count: 7, Enabled: true}
			in.Nested.Key = "k"
			data, err := confparse.Marshal(f, in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var out testConfig
			if err := confparse.UnmarshalStrict(f, data, &out); err != nil {
				t.Fatalf("UnmarshalStrict() error = %v\n%s", err, data)
			}
			if out != in {
				t.Errorf("round trip = %+v, want %+v", out, in)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFormatOf
// ---------------------------------------------------------------------------

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    confparse.Format
		wantErr bool
	}{
		{"config.yaml", confparse.YAML, false},
		{"dir/config.YML", confparse.YAML, false},
		{"config.toml", confparse.TOML, false},
		{"config.json", "", true},
		{"config", "", true},
	}

	for _, tt := range tests {
		got, err := confparse.FormatOf(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v", tt.path, got, err)
		}
	}
}
