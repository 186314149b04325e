package http

import (
	"net/http"

	"fintrack/internal/auth"
)

const maxListLimit = 1000

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	limit, err := parseLimit(r, maxListLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txs, err := s.transactions.List(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"transactions": txs}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := req.toTransaction(userID, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+formatID(created.ID)).
		Data(created).
		Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.transactions.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(tx).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := req.toTransaction(userID, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = id

	updated, err := s.transactions.Update(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(updated).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.transactions.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	cats, err := s.transactions.Categories(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"categories": cats}).Write(w)
}
