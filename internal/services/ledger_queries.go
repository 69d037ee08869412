package services

import (
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/metrics"
	"fintrack/internal/report"
)

// errNoChange aborts apply without saving for operations that found nothing
// to do.
var errNoChange = errors.New("no change")

func ignoreNoChange(err error) error {
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

// Document returns a deep copy of the current document.
func (s *LedgerService) Document() *core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

func (s *LedgerService) Accounts() []core.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Accounts()
}

// Account looks up one account by name.
func (s *LedgerService) Account(name string) (core.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Account(name)
}

func (s *LedgerService) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Categories()
}

func (s *LedgerService) Budgets() map[string]core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Budgets()
}

func (s *LedgerService) Loans() []core.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Loans()
}

func (s *LedgerService) Theme() core.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Theme()
}

// Selectors lists the targets a new transaction may be booked against.
func (s *LedgerService) Selectors() []ledger.Selector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Selectors()
}

// TargetFromLabel maps a selector label to a typed target.
func (s *LedgerService) TargetFromLabel(label string) core.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.TargetFromLabel(label)
}

// Transactions returns the transactions matching f, newest first.
func (s *LedgerService) Transactions(f report.Filter) []core.Transaction {
	return report.FilterTransactions(s.Document(), f)
}

// DanglingLoanPayments lists payments whose loan has been deleted.
func (s *LedgerService) DanglingLoanPayments() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.DanglingLoanPayments()
}

// TotalBalance sums every account balance.
func (s *LedgerService) TotalBalance() core.Money {
	return report.TotalBalance(s.Document())
}

// TotalDebt sums every loan's remaining balance.
func (s *LedgerService) TotalDebt() core.Money {
	return report.TotalDebt(s.Document())
}

// MonthlySpend returns per-category spend for a month.
func (s *LedgerService) MonthlySpend(m report.Month) []core.CategoryAmount {
	return s.engine.MonthlySpend(s.Document(), m.Year, m.Month)
}

// BudgetStatus returns budget usage for a month.
func (s *LedgerService) BudgetStatus(m report.Month) []core.BudgetLine {
	return s.engine.BudgetStatus(s.Document(), m.Year, m.Month)
}

// Overview returns the dashboard for a month. Results are cached per
// document version.
func (s *LedgerService) Overview(m report.Month) core.MonthOverview {
	s.mu.Lock()
	key := fmt.Sprintf("%d:%s", s.version, m)
	overviews := s.overviews
	if o, ok := overviews.Get(key); ok {
		s.mu.Unlock()
		metrics.RecordCacheLookup(true)
		return o
	}
	doc := s.ledger.Snapshot()
	s.mu.Unlock()

	metrics.RecordCacheLookup(false)
	o := s.engine.Overview(doc, m.Year, m.Month)
	overviews.Set(key, o)
	return o
}
