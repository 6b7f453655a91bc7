package http

import (
	"net/http"

	"bilancio/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var tx core.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	tx.OwnerID = owner

	created, err := s.lifecycle.Create(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var tx core.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	tx.ID = r.PathValue("id")
	tx.OwnerID = owner

	updated, err := s.lifecycle.Update(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := s.lifecycle.Delete(r.Context(), r.PathValue("id"), owner); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.invalidateOwner(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	tx, err := s.stores.Transactions.GetByID(r.Context(), r.PathValue("id"), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	year, month, err := monthParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	txs, err := s.stores.Transactions.ListByMonth(r.Context(), owner, core.YearMonth(year, month))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}
