package http

import (
	"net/http"
	"strings"

	"finbook/internal/core"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, uid int64) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.ledger.CreateCategory(r.Context(),
		strings.TrimSpace(req.Name), core.TransactionType(req.Type), strings.TrimSpace(req.Color))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, category)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, uid int64) {
	var typ *core.TransactionType
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			writeError(w, r, core.ErrBadEntryType)
			return
		}
		typ = &t
	}

	categories, err := s.ledger.ListCategories(r.Context(), typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, r, http.StatusOK, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.ledger.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := s.ledger.UpdateCategory(r.Context(), id,
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Color))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, category)
}

// handleDeleteCategory removes a taxonomy entry. Transactions referencing it
// keep their history; the category link is nulled, so cached breakdowns for
// every user are stale and the whole view cache is flushed.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	// Categories are global, not per-user.
	s.invalidateAll()
	writeJSON(w, r, http.StatusNoContent, nil)
}
