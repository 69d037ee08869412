package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
	ErrInvalidDate      = errors.New("invalid date (expected YYYY-MM-DD)")

	// Kinds of rejected operations. Every typed error below matches exactly one
	// of these through errors.Is.
	ErrValidation        = errors.New("validation failed")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ValidationError lists every constraint an input violated.
type ValidationError struct {
	Problems []string
}

// NewValidationError builds a ValidationError from one or more problems.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateNameError reports a name collision on an account, category or loan.
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// NotFoundError reports a reference to an id or name that is not present.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientFundsError reports a transfer larger than the source balance.
type InsufficientFundsError struct {
	Account   string
	Balance   Money
	Requested Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %q: balance %s, requested %s", e.Account, e.Balance, e.Requested)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// AmountError reports stored text that is not a usable amount.
type AmountError struct {
	Text string
	Err  error
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("amount %q: %v", e.Text, e.Err)
}

func (e *AmountError) Unwrap() error { return e.Err }
