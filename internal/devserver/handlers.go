package devserver

import (
	"io"
	"net/http"
	"strconv"

	"github.com/leefowlercu/mldata/internal/api"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var rec api.DatasetRecord
	if !decodeBody(w, r, &rec) {
		return
	}
	if rec.URLPrefix == "" {
		writeJSONError(w, http.StatusBadRequest, "url_prefix is required")
		return
	}

	if err := s.store.CreateDataset(r.Context(), rec); err != nil {
		s.writeStoreError(w, err)
		return
	}

	created, err := s.store.GetDataset(r.Context(), rec.URLPrefix)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	prefix, _, ok := scope(w, r, false)
	if !ok {
		return
	}

	rec, err := s.store.GetDataset(r.Context(), prefix)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateDataset(w http.ResponseWriter, r *http.Request) {
	prefix, _, ok := scope(w, r, false)
	if !ok {
		return
	}

	var upd api.DatasetUpdate
	if !decodeBody(w, r, &upd) {
		return
	}

	if err := s.store.UpdateDataset(r.Context(), prefix, upd); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListElements serves one page of element summaries. The page size is
// fixed by the server; pages past the end are empty.
func (s *Server) handleListElements(w http.ResponseWriter, r *http.Request) {
	prefix, _, ok := scope(w, r, false)
	if !ok {
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "page must be a non-negative integer")
			return
		}
		page = n
	}

	elements, err := s.store.ListElements(r.Context(), prefix, page*s.config.PageSize, s.config.PageSize)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elements)
}

// handleCreateElement responds with the new id as a bare JSON string.
func (s *Server) handleCreateElement(w http.ResponseWriter, r *http.Request) {
	prefix, _, ok := scope(w, r, false)
	if !ok {
		return
	}

	var in api.ElementInput
	if !decodeBody(w, r, &in) {
		return
	}

	id, err := s.store.CreateElement(r.Context(), prefix, in)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (s *Server) handleGetElement(w http.ResponseWriter, r *http.Request) {
	prefix, id, ok := scope(w, r, true)
	if !ok {
		return
	}

	rec, err := s.store.GetElement(r.Context(), prefix, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	prefix, id, ok := scope(w, r, true)
	if !ok {
		return
	}

	var in api.ElementInput
	if !decodeBody(w, r, &in) {
		return
	}

	if err := s.store.UpdateElement(r.Context(), prefix, id, in); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	prefix, id, ok := scope(w, r, true)
	if !ok {
		return
	}

	if err := s.store.DeleteElement(r.Context(), prefix, id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	prefix, id, ok := scope(w, r, true)
	if !ok {
		return
	}

	data, info, err := s.store.GetContent(r.Context(), prefix, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", `"`+info.Hash+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePutContent(w http.ResponseWriter, r *http.Request) {
	prefix, id, ok := scope(w, r, true)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxContentSize))
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "content too large")
		return
	}

	info, err := s.store.PutContent(r.Context(), prefix, id, data)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	w.Header().Set("ETag", `"`+info.Hash+`"`)
	w.WriteHeader(http.StatusNoContent)
}
