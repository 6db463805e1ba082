package tex2pdf

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-tex2pdf/internal/dateutil"
	"github.com/alnah/go-tex2pdf/internal/fileutil"
)

// artifactPerm is the mode of written PDF files.
const artifactPerm = 0o644

// ArtifactName returns the PDF file name for a source: the source's base
// name without its extension, an optional date stamp, and ".pdf". An empty
// dateFormat omits the stamp.
//
//	ArtifactName("notes/ch1.tex", "iso", t) // "ch1_2024-03-05.pdf"
func ArtifactName(source, dateFormat string, now time.Time) (string, error) {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document"
	}
	if dateFormat == "" {
		return base + ".pdf", nil
	}
	stamp, err := dateutil.FilenameStamp(dateFormat, now)
	if err != nil {
		return "", err
	}
	return base + "_" + stamp + ".pdf", nil
}

// WriteArtifact atomically writes data to dir/name and returns the path.
// Readers never observe a partial file.
func WriteArtifact(dir, name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: invalid name %q", ErrWriteArtifact, name)
	}
	path := filepath.Join(dir, name)
	if err := fileutil.WriteFileAtomic(path, data, artifactPerm); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteArtifact, err)
	}
	return path, nil
}
