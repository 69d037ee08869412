package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

type overviewResponse struct {
	core.MonthOverview
	Prev string `json:"prev"`
	Next string `json:"next,omitempty"`
}

type selectorResponse struct {
	Label string `json:"label"`
	Loan  bool   `json:"loan"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"version":   s.svc.Version(),
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
}

// handleOverview returns the dashboard for ?year=&month= with links to the
// neighbouring months. There is no next month past the current one.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	m, err := parseMonth(r, report.MonthOf(now))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := overviewResponse{
		MonthOverview: s.svc.Overview(m),
		Prev:          m.Prev().String(),
	}
	if m.CanAdvance(now) {
		resp.Next = m.Next().String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectors(w http.ResponseWriter, r *http.Request) {
	sel := s.svc.Selectors()
	out := make([]selectorResponse, 0, len(sel))
	for _, x := range sel {
		out = append(out, selectorResponse{Label: x.Label, Loan: x.Target.IsLoan()})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleIntegrity lists loan payments whose loan no longer exists.
func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"dangling_loan_payments": s.svc.DanglingLoanPayments(),
	})
}

// handleTheme sets the theme; "toggle" flips it.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var theme core.Theme
	if req.Theme == "toggle" {
		t, err := s.svc.ToggleTheme(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		theme = t
	} else {
		theme = core.Theme(req.Theme)
		if err := s.svc.SetTheme(r.Context(), theme); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, themeRequest{Theme: string(theme)})
}
