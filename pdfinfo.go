package tex2pdf

import (
	"bytes"
	"errors"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
)

// ErrInvalidPDF is returned by Inspect for data it cannot parse.
var ErrInvalidPDF = errors.New("invalid PDF")

const (
	pointsPerMM = 72 / mmPerInch

	// maxPageTreeDepth bounds the Parent walk on cyclic page trees.
	maxPageTreeDepth = 32
)

// PDFInfo summarizes an exported PDF.
type PDFInfo struct {
	Pages int
	// WidthMM and HeightMM are the media box of the first page.
	WidthMM  float64
	HeightMM float64
}

// Inspect reads the page count and first page size of a PDF.
func Inspect(data []byte) (info PDFInfo, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PDFInfo{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	info.Pages = r.NumPage()
	if info.Pages == 0 {
		return info, nil
	}
	if box := mediaBox(r.Page(1).V); box.Len() == 4 {
		info.WidthMM = (box.Index(2).Float64() - box.Index(0).Float64()) / pointsPerMM
		info.HeightMM = (box.Index(3).Float64() - box.Index(1).Float64()) / pointsPerMM
	}
	return info, nil
}

// mediaBox returns the MediaBox of a page object. The attribute is
// inheritable, so the /Pages ancestors are searched when the page itself
// has none.
func mediaBox(v pdflib.Value) pdflib.Value {
	for depth := 0; v.Kind() != pdflib.Null && depth < maxPageTreeDepth; depth++ {
		if box := v.Key("MediaBox"); box.Len() == 4 {
			return box
		}
		v = v.Key("Parent")
	}
	return pdflib.Value{}
}
