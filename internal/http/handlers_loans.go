package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

type loanRequest struct {
	Name        string     `json:"name"`
	TotalAmount amountText `json:"total_amount"`
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"loans":      s.svc.Loans(),
		"total_debt": s.svc.TotalDebt(),
	})
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	loan, err := s.svc.AddLoan(r.Context(), req.Name, lenientAmount(req.TotalAmount))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// handleEditLoan renames a loan and/or changes its total. Omitted fields keep
// their current value.
func (s *Server) handleEditLoan(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req loanRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	current, ok := s.findLoan(name)
	if !ok {
		s.writeError(w, r, &core.NotFoundError{Kind: "loan", Key: name})
		return
	}
	newName := req.Name
	if strings.TrimSpace(newName) == "" {
		newName = current.Name
	}
	total := current.TotalAmount
	if strings.TrimSpace(string(req.TotalAmount)) != "" {
		total = lenientAmount(req.TotalAmount)
	}
	loan, err := s.svc.EditLoan(r.Context(), name, newName, total)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// handleDeleteLoan reports how many payments were left without their loan.
func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	dangling, err := s.svc.DeleteLoan(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"dangling_payments": dangling})
}

func (s *Server) findLoan(name string) (core.Loan, bool) {
	for _, l := range s.svc.Loans() {
		if l.Name == name {
			return l, true
		}
	}
	return core.Loan{}, false
}
