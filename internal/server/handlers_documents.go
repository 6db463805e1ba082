package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alnah/go-tex2pdf/internal/store"
	"github.com/alnah/go-tex2pdf/internal/tree"
)

// documentKey returns the normalized {key} URL parameter. Writes the error
// response and returns false when the key is invalid.
func documentKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		jsonError(w, "invalid key escape", http.StatusBadRequest)
		return "", false
	}
	key, err := store.NormalizeKey(raw)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return key, true
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, "list", err)
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"documents": entries})
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	text, ok := readSource(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = key
	}
	if err := s.store.Put(r.Context(), key, tree.NewSource(name, text)); err != nil {
		s.fail(w, "put", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(store.Entry{Key: key, Name: name, Size: len(text), Updated: s.now().UTC()})
}

// handleGetDocument returns the stored source byte for byte.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	src, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.fail(w, "get", err)
		return
	}
	w.Header().Set("Content-Type", "text/x-tex; charset=utf-8")
	_, _ = w.Write([]byte(src.Text))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), key); err != nil {
		s.fail(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	src, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.fail(w, "get", err)
		return
	}
	in, err := inputFromQuery(r, src.Name, src.Text)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.render(w, r, in)
}

// handleExportDocument exports a stored document. Only one export per key
// runs at a time; a concurrent request gets 409.
func (s *Server) handleExportDocument(w http.ResponseWriter, r *http.Request) {
	key, ok := documentKey(w, r)
	if !ok {
		return
	}
	if !s.beginExport(key) {
		w.Header().Set("Retry-After", "1")
		jsonError(w, "export already in progress for "+key, http.StatusConflict)
		return
	}
	defer s.endExport(key)

	start := time.Now()
	src, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.fail(w, "get", err)
		return
	}
	in, err := inputFromQuery(r, src.Name, src.Text)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.export(w, r, in)
	s.log.Debug("document exported", "key", key, "duration", time.Since(start))
}
