package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/alnah/go-tex2pdf"
	"github.com/alnah/go-tex2pdf/internal/present"
	"github.com/alnah/go-tex2pdf/internal/store"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

// FormatHTML is the full-page format; the rest come from present.
const FormatHTML = "html"

// Response headers.
const (
	headerMathErrors = "X-Math-Errors"
	headerPageCount  = "X-Page-Count"
)

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	text, ok := readSource(w, r)
	if !ok {
		return
	}
	in, err := inputFromQuery(r, "request", text)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.render(w, r, in)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	text, ok := readSource(w, r)
	if !ok {
		return
	}
	in, err := inputFromQuery(r, "request", text)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.export(w, r, in)
}

// render writes in in the format named by the format query parameter.
func (s *Server) render(w http.ResponseWriter, r *http.Request, in tex2pdf.Input) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatHTML
	}
	var p present.Presenter
	if format != FormatHTML {
		var err error
		if p, err = present.New(format); err != nil {
			jsonError(w, fmt.Sprintf("unknown format %q (use %s or %s)", format, FormatHTML, strings.Join(present.Formats(), ", ")), http.StatusBadRequest)
			return
		}
	}

	ctx := r.Context()
	doc, err := s.engine.Render(ctx, in)
	if err != nil {
		s.fail(w, "render", err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/html; charset=utf-8"
	if p == nil {
		page, err := s.engine.HTML(ctx, doc)
		if err != nil {
			s.fail(w, "render", err)
			return
		}
		buf.WriteString(page)
	} else {
		if err := p.Present(ctx, &buf, doc.Nodes); err != nil {
			s.fail(w, "render", err)
			return
		}
		contentType = present.ContentType(format)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set(headerMathErrors, strconv.Itoa(len(doc.MathErrors())))
	_, _ = w.Write(buf.Bytes())
}

// export renders in and writes the PDF.
func (s *Server) export(w http.ResponseWriter, r *http.Request, in tex2pdf.Input) {
	page, err := s.pageFromQuery(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	doc, err := s.engine.Render(ctx, in)
	if err != nil {
		s.fail(w, "render", err)
		return
	}
	pdf, err := s.engine.Export(ctx, doc, page)
	if err != nil {
		s.fail(w, "export", err)
		return
	}

	name, err := tex2pdf.ArtifactName(in.Name, "", s.now())
	if err != nil {
		name = "document.pdf"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.Header().Set(headerMathErrors, strconv.Itoa(len(doc.MathErrors())))
	if info, err := tex2pdf.Inspect(pdf); err == nil {
		w.Header().Set(headerPageCount, strconv.Itoa(info.Pages))
	}
	_, _ = w.Write(pdf)
}

// readSource reads the request body as source text. Writes the error
// response and returns false on failure.
func readSource(w http.ResponseWriter, r *http.Request) (string, bool) {
	body := http.MaxBytesReader(w, r.Body, tree.MaxSourceSize)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("source exceeds max size (%d bytes)", tree.MaxSourceSize), http.StatusRequestEntityTooLarge)
			return "", false
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return "", false
	}
	return string(data), true
}

// inputFromQuery builds an Input from the title, css and toc query
// parameters.
func inputFromQuery(r *http.Request, name, text string) (tex2pdf.Input, error) {
	q := r.URL.Query()
	in := tex2pdf.Input{
		Name:   name,
		Source: text,
		Title:  q.Get("title"),
		CSS:    q.Get("css"),
	}
	if v := q.Get("toc"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return in, fmt.Errorf("invalid toc value %q", v)
		}
		if on {
			in.TOC = &tex2pdf.TOC{Title: q.Get("tocTitle")}
		}
	}
	return in, nil
}

// pageFromQuery overlays the size, orientation and margin query parameters
// on the server defaults.
func (s *Server) pageFromQuery(r *http.Request) (*tex2pdf.PageSettings, error) {
	page := tex2pdf.DefaultPageSettings()
	if s.page != nil {
		*page = *s.page
	}
	q := r.URL.Query()
	if v := q.Get("size"); v != "" {
		page.Size = v
	}
	if v := q.Get("orientation"); v != "" {
		page.Orientation = v
	}
	if v := q.Get("margin"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid margin %q", v)
		}
		page.Margin = m
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error(op+" failed", "error", err)
	}
	jsonError(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tree.ErrSourceTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tree.ErrInvalidSource),
		errors.Is(err, tex2pdf.ErrEmptySurface),
		errors.Is(err, tex2pdf.ErrInvalidTOCDepth):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, tex2pdf.ErrBrowserConnect):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
