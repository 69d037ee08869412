package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/report"
)

// transactionRequest carries the target as a selector label ("Food",
// "Loan: Car").
type transactionRequest struct {
	Date        string     `json:"date"`
	Amount      amountText `json:"amount"`
	Target      string     `json:"target"`
	Account     string     `json:"account"`
	Description string     `json:"description"`
}

func (s *Server) input(req transactionRequest) ledger.TransactionInput {
	return ledger.TransactionInput{
		Date:        req.Date,
		Amount:      lenientAmount(req.Amount),
		Target:      s.svc.TargetFromLabel(req.Target),
		Account:     req.Account,
		Description: req.Description,
	}
}

// handleListTransactions lists transactions newest first, filtered by
// ?target= (exact label) and ?q= (description substring).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	txs := s.svc.Transactions(report.Filter{
		Target:      q.Get("target"),
		Description: q.Get("q"),
	})
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.svc.AddTransaction(r.Context(), s.input(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id := core.TransactionID(chi.URLParam(r, "id"))
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.svc.EditTransaction(r.Context(), id, s.input(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := core.TransactionID(chi.URLParam(r, "id"))
	if _, err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
