// Package ledger holds the tracker's document and the only operations allowed
// to change it. Every mutator validates its whole input before touching state,
// so a call either applies completely or leaves the ledger unchanged.
//
// A Ledger is not safe for concurrent use; callers serialize access.
package ledger

import (
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// Ledger owns the accounts, categories, budgets, transactions and loans.
type Ledger struct {
	doc   *core.Document
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDGenerator replaces the random UUID generator used for new
// transactions and loans.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// New wraps a document. A nil document starts empty; nil collections are
// replaced with empty ones.
func New(doc *core.Document, opts ...Option) *Ledger {
	if doc == nil {
		doc = core.EmptyDocument()
	}
	normalize(doc)
	l := &Ledger{doc: doc, newID: uuid.NewString}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func normalize(doc *core.Document) {
	if doc.Accounts == nil {
		doc.Accounts = []core.Account{}
	}
	if doc.Categories == nil {
		doc.Categories = []string{}
	}
	if doc.Budgets == nil {
		doc.Budgets = map[string]core.Money{}
	}
	if doc.Transactions == nil {
		doc.Transactions = []core.Transaction{}
	}
	if doc.Loans == nil {
		doc.Loans = []core.Loan{}
	}
	if !doc.Theme.Valid() {
		doc.Theme = core.ThemeLight
	}
}

// Snapshot returns a deep copy of the current document.
func (l *Ledger) Snapshot() *core.Document {
	return l.doc.Clone()
}

// Restore replaces the ledger state with a copy of doc.
func (l *Ledger) Restore(doc *core.Document) {
	cp := doc.Clone()
	normalize(cp)
	l.doc = cp
}

// Accounts returns a copy of the accounts in insertion order.
func (l *Ledger) Accounts() []core.Account {
	return append([]core.Account{}, l.doc.Accounts...)
}

// Account looks an account up by name.
func (l *Ledger) Account(name string) (core.Account, bool) {
	if i := l.accountIndex(name); i >= 0 {
		return l.doc.Accounts[i], true
	}
	return core.Account{}, false
}

// Categories returns a copy of the category names in insertion order.
func (l *Ledger) Categories() []string {
	return append([]string{}, l.doc.Categories...)
}

// Budgets returns a copy of the category caps.
func (l *Ledger) Budgets() map[string]core.Money {
	out := make(map[string]core.Money, len(l.doc.Budgets))
	for k, v := range l.doc.Budgets {
		out[k] = v
	}
	return out
}

// Transactions returns a copy of the transactions in insertion order.
func (l *Ledger) Transactions() []core.Transaction {
	return append([]core.Transaction{}, l.doc.Transactions...)
}

// Transaction looks a transaction up by id.
func (l *Ledger) Transaction(id core.TransactionID) (core.Transaction, bool) {
	if i := l.transactionIndex(id); i >= 0 {
		return l.doc.Transactions[i], true
	}
	return core.Transaction{}, false
}

// Loans returns a copy of the loans in insertion order.
func (l *Ledger) Loans() []core.Loan {
	return append([]core.Loan{}, l.doc.Loans...)
}

// Loan looks a loan up by name.
func (l *Ledger) Loan(name string) (core.Loan, bool) {
	if i := l.loanIndexByName(name); i >= 0 {
		return l.doc.Loans[i], true
	}
	return core.Loan{}, false
}

// Theme returns the stored display theme.
func (l *Ledger) Theme() core.Theme {
	return l.doc.Theme
}

// SetTheme stores the display theme.
func (l *Ledger) SetTheme(t core.Theme) error {
	if !t.Valid() {
		return core.NewValidationError("theme must be \"light\" or \"dark\"")
	}
	l.doc.Theme = t
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (l *Ledger) ToggleTheme() core.Theme {
	l.doc.Theme = l.doc.Theme.Toggle()
	return l.doc.Theme
}

func (l *Ledger) accountIndex(name string) int {
	for i, a := range l.doc.Accounts {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func (l *Ledger) categoryIndex(name string) int {
	for i, c := range l.doc.Categories {
		if c == name {
			return i
		}
	}
	return -1
}

func (l *Ledger) transactionIndex(id core.TransactionID) int {
	for i, t := range l.doc.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) loanIndexByName(name string) int {
	for i, ln := range l.doc.Loans {
		if ln.Name == name {
			return i
		}
	}
	return -1
}

func (l *Ledger) loanIndexByID(id core.LoanID) int {
	if id == "" {
		return -1
	}
	for i, ln := range l.doc.Loans {
		if ln.ID == id {
			return i
		}
	}
	return -1
}

func cleanName(s string) string {
	return strings.TrimSpace(s)
}
