package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// badRequestError marks malformed requests (400) as opposed to requests the
// ledger rejected (422).
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInsufficientFunds):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with the status it maps to. Internal errors are
// logged and replaced by a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		resp.Problems = ve.Problems
	}
	if status == http.StatusInternalServerError {
		log.LogError(r.Context(), log.FromContext(r.Context()), "Request failed", err, r.Method,
			log.NewFields().With(log.FieldPath, r.URL.Path))
		resp = errorResponse{Error: "internal error"}
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a single JSON object from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return badRequest("read body: %v", err)
	}
	if len(body) > maxBodyBytes {
		return badRequest("request body too large")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// amountText accepts an amount as a JSON number or string and keeps its
// text for the ledger's own parsing.
type amountText string

func (a *amountText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if s, err := strconv.Unquote(string(b)); err == nil {
		*a = amountText(s)
		return nil
	}
	*a = amountText(b)
	return nil
}

// lenientAmount parses a non-empty amount and yields zero when it does not
// parse, leaving the ledger to report the amount as invalid.
func lenientAmount(a amountText) core.Money {
	m, err := core.ParseAmount(string(a))
	if errors.Is(err, core.ErrAmountOutOfRange) {
		// Just past the bound, so the ledger reports it as too large.
		return core.Cents(core.MaxCents + 1)
	}
	if err != nil {
		return core.Money{}
	}
	return m
}

// parseMonth reads ?year=&month=, defaulting each to the current month.
func parseMonth(r *http.Request, now report.Month) (report.Month, error) {
	year, month := now.Year, now.Month
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return report.Month{}, badRequest("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return report.Month{}, badRequest("invalid month %q", v)
		}
		month = m
	}
	m, err := report.NewMonth(year, month)
	if err != nil {
		return report.Month{}, badRequest("%v", err)
	}
	return m, nil
}
