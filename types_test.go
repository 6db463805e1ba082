package tex2pdf

import (
	"errors"
	"math"
	"testing"
)

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    *PageSettings
		wantErr error
	}{
		{"nil uses defaults", nil, nil},
		{"defaults", DefaultPageSettings(), nil},
		{"letter landscape", &PageSettings{Size: "letter", Orientation: "landscape", Margin: 1}, nil},
		{"case insensitive", &PageSettings{Size: "LEGAL", Orientation: "Portrait", Margin: 0}, nil},
		{"max margin", &PageSettings{Size: "a4", Orientation: "portrait", Margin: MaxMargin}, nil},
		{"unknown size", &PageSettings{Size: "a3", Orientation: "portrait"}, ErrInvalidPageSize},
		{"empty size", &PageSettings{Orientation: "portrait"}, ErrInvalidPageSize},
		{"unknown orientation", &PageSettings{Size: "a4", Orientation: "diagonal"}, ErrInvalidOrientation},
		{"negative margin", &PageSettings{Size: "a4", Orientation: "portrait", Margin: -0.1}, ErrInvalidMargin},
		{"margin too large", &PageSettings{Size: "a4", Orientation: "portrait", Margin: 3.5}, ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.page.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPageSettings_SizeMM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page  PageSettings
		wantW float64
		wantH float64
	}{
		{PageSettings{Size: "a4", Orientation: "portrait"}, 210, 297},
		{PageSettings{Size: "a4", Orientation: "landscape"}, 297, 210},
		{PageSettings{Size: "letter", Orientation: "portrait"}, 215.9, 279.4},
		{PageSettings{Size: "legal", Orientation: "landscape"}, 355.6, 215.9},
		{PageSettings{Size: "unknown", Orientation: "portrait"}, 210, 297},
	}

	for _, tt := range tests {
		t.Run(tt.page.Size+"/"+tt.page.Orientation, func(t *testing.T) {
			t.Parallel()

			w, h := tt.page.SizeMM()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("SizeMM() = %v x %v, want %v x %v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPageSettings_PrintableMM(t *testing.T) {
	t.Parallel()

	p := &PageSettings{Size: "letter", Orientation: "portrait", Margin: 1}
	w, h := p.PrintableMM()
	if math.Abs(w-165.1) > 1e-9 || math.Abs(h-228.6) > 1e-9 {
		t.Errorf("PrintableMM() = %v x %v, want 165.1 x 228.6", w, h)
	}
}

func TestResolvePage(t *testing.T) {
	t.Parallel()

	if got := resolvePage(nil); *got != *DefaultPageSettings() {
		t.Errorf("resolvePage(nil) = %+v", got)
	}

	in := &PageSettings{Size: "A4", Orientation: "Landscape", Margin: 0.25}
	got := resolvePage(in)
	if got.Size != "a4" || got.Orientation != "landscape" || got.Margin != 0.25 {
		t.Errorf("resolvePage() = %+v", got)
	}
	if in.Size != "A4" {
		t.Error("resolvePage must not mutate its input")
	}
}

func TestExportMode_Validate(t *testing.T) {
	t.Parallel()

	for _, m := range []ExportMode{"", ExportRaster, ExportPrint} {
		if err := m.Validate(); err != nil {
			t.Errorf("%q: unexpected error %v", m, err)
		}
	}
	if err := ExportMode("svg").Validate(); !errors.Is(err, ErrInvalidExportMode) {
		t.Errorf("error = %v, want ErrInvalidExportMode", err)
	}
}

func TestTOC_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		toc     *TOC
		wantErr bool
	}{
		{"nil", nil, false},
		{"defaults", &TOC{}, false},
		{"sections only", &TOC{MaxDepth: 1}, false},
		{"subsections only", &TOC{MinDepth: 2}, false},
		{"inverted", &TOC{MinDepth: 2, MaxDepth: 1}, true},
		{"too deep", &TOC{MaxDepth: 3}, true},
		{"negative", &TOC{MinDepth: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.toc.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTOCDepth) {
				t.Errorf("error = %v, want ErrInvalidTOCDepth", err)
			}
		})
	}
}

func TestDocument_NilSafe(t *testing.T) {
	t.Parallel()

	var d *Document
	if !d.Empty() {
		t.Error("nil document should be empty")
	}
	if d.Stats().Nodes != 0 {
		t.Error("nil document should have no nodes")
	}
	if d.MathErrors() != nil {
		t.Error("nil document should have no math errors")
	}
}
