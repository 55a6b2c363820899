package http

import (
	"net/http"

	"finbook/internal/core"
)

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, uid int64) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	spec, err := req.toSpec()
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.ledger.CreateAccount(r.Context(), uid, spec)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate(uid)
	writeJSON(w, r, http.StatusCreated, account)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, uid int64) {
	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"

	accounts, err := s.ledger.ListAccounts(r.Context(), uid, includeDeleted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, r, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.ledger.GetAccount(r.Context(), id, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.ledger.UpdateAccount(r.Context(), id, uid, req.toPatch())
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate(uid)
	writeJSON(w, r, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ledger.DeleteAccount(r.Context(), id, uid); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate(uid)
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleRestoreAccount(w http.ResponseWriter, r *http.Request, uid int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.ledger.RestoreAccount(r.Context(), id, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate(uid)
	writeJSON(w, r, http.StatusOK, account)
}

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request, uid int64) {
	total, err := s.ledger.TotalBalance(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]core.Money{"totalBalance": total})
}
