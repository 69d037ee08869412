package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

type accountRequest struct {
	Name    string     `json:"name"`
	Balance amountText `json:"balance"`
}

type fundsRequest struct {
	Amount amountText `json:"amount"`
}

type transferRequest struct {
	From   string     `json:"from"`
	To     string     `json:"to"`
	Amount amountText `json:"amount"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"accounts":      s.svc.Accounts(),
		"total_balance": s.svc.TotalBalance(),
	})
}

// handleCreateAccount opens an account. The opening balance may be negative
// and defaults to zero.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var balance core.Money
	if strings.TrimSpace(string(req.Balance)) != "" {
		b, err := core.ParseSignedAmount(string(req.Balance))
		if err != nil {
			s.writeError(w, r, core.NewValidationError("opening balance must be a number"))
			return
		}
		balance = b
	}
	if err := s.svc.AddAccount(r.Context(), req.Name, balance); err != nil {
		s.writeError(w, r, err)
		return
	}
	acc, _ := s.svc.Account(strings.TrimSpace(req.Name))
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	removed, err := s.svc.DeleteAccount(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, &core.NotFoundError{Kind: "account", Key: name})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req fundsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.AddFunds(r.Context(), name, lenientAmount(req.Amount)); err != nil {
		s.writeError(w, r, err)
		return
	}
	acc, _ := s.svc.Account(name)
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.TransferFunds(r.Context(), req.From, req.To, lenientAmount(req.Amount)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": s.svc.Accounts()})
}
