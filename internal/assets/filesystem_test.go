package assets

// Notes:
// - Each case builds its own directory tree with writeAsset so the cases
//   stay independent under t.Parallel().
// - Symlink escape is skipped where the OS refuses to create symlinks.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeAsset(t *testing.T, base, rel, content string) {
	t.Helper()
	p := filepath.Join(base, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

// ---------------------------------------------------------------------------
// TestNewFilesystemLoader - Base path validation
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "valid directory", path: t.TempDir()},
		{name: "empty path", path: "", wantErr: ErrInvalidBasePath},
		{name: "missing directory", path: "/nonexistent/tex2pdf/assets", wantErr: ErrInvalidBasePath},
		{name: "file instead of directory", path: file, wantErr: ErrInvalidBasePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewFilesystemLoader(tt.path)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("NewFilesystemLoader() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewFilesystemLoader() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_Load - Styles and templates
// ---------------------------------------------------------------------------

func TestFilesystemLoader_Load(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles/custom.css", "body { color: red; }")
	writeAsset(t, base, "templates/page.html", "<main>{{.Body}}</main>")

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	tests := []struct {
		name    string
		load    func(string) (string, error)
		asset   string
		want    string
		wantErr error
	}{
		{name: "style", load: loader.LoadStyle, asset: "custom", want: "body { color: red; }"},
		{name: "template", load: loader.LoadTemplate, asset: "page", want: "<main>{{.Body}}</main>"},
		{name: "missing style", load: loader.LoadStyle, asset: "nope", wantErr: ErrStyleNotFound},
		{name: "missing template", load: loader.LoadTemplate, asset: "nope", wantErr: ErrTemplateNotFound},
		{name: "traversal", load: loader.LoadStyle, asset: "../secret", wantErr: ErrInvalidAssetName},
		{name: "backslash traversal", load: loader.LoadTemplate, asset: `..\secret`, wantErr: ErrInvalidAssetName},
		{name: "extension", load: loader.LoadStyle, asset: "style.evil", wantErr: ErrInvalidAssetName},
		{name: "empty", load: loader.LoadTemplate, asset: "", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.load(tt.asset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("load(%q) error = %v, want %v", tt.asset, err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("load(%q) = %q, %v, want %q", tt.asset, got, err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader_SymlinkEscape
// ---------------------------------------------------------------------------

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	secret := filepath.Join(t.TempDir(), "secret.css")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(secret, filepath.Join(base, "styles", "evil.css")); err != nil {
		t.Skipf("symlink creation not supported: %v", err)
	}

	loader, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if _, err := loader.LoadStyle("evil"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadStyle() error = %v, want ErrPathTraversal", err)
	}
}
