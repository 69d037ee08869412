package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

type categoryRequest struct {
	Name string `json:"name"`
}

type budgetRequest struct {
	Amount amountText `json:"amount"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.svc.Categories()})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.AddCategory(r.Context(), req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"categories": s.svc.Categories()})
}

// handleDeleteCategory removes a category together with its budget.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	removed, err := s.svc.DeleteCategory(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, &core.NotFoundError{Kind: "category", Key: name})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"budgets": s.svc.Budgets()})
}

// handleSetBudget applies a budget the way the settings form does: a blank
// or null amount clears the cap.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.ApplyBudgetInput(r.Context(), category, string(req.Amount)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"budgets": s.svc.Budgets()})
}

func (s *Server) handleClearBudget(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	removed, err := s.svc.ClearBudget(r.Context(), category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, &core.NotFoundError{Kind: "budget", Key: category})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
