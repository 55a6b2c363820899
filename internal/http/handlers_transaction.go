package http

import (
	"net/http"

	"finbook/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, uid int64) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	spec, err := req.toSpec()
	if err != nil {
		writeError(w, r, err)
		return
	}

	transaction, err := s.ledger.CreateTransaction(r.Context(), uid, spec)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate(uid)
	writeJSON(w, r, http.StatusCreated, transaction)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, uid int64) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), uid, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if transactions == nil {
		transactions = []core.Transaction{}
	}
	writeJSON(w, r, http.StatusOK, transactions)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	transaction, err := s.ledger.GetTransaction(r.Context(), id, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, transaction)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err)
		return
	}

	transaction, err := s.ledger.UpdateTransaction(r.Context(), id, uid, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate(uid)
	writeJSON(w, r, http.StatusOK, transaction)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id, uid); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate(uid)
	writeJSON(w, r, http.StatusNoContent, nil)
}
