// Package report computes read-only views over a ledger document: balances,
// debt, per-category spend for a month, budget usage and transaction filters.
// Nothing in this package mutates the document it is given.
package report

import (
	"sort"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Engine aggregates ledger documents. The zero value is not usable; call New.
type Engine struct {
	logger *log.Logger
}

// New returns an Engine. A nil logger discards output.
func New(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Discard()
	}
	return &Engine{logger: logger.WithComponent(log.ComponentReport)}
}

// TotalBalance is the sum of all account balances.
func TotalBalance(doc *core.Document) core.Money {
	var total core.Money
	for _, a := range doc.Accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// TotalDebt is the sum of the remaining balances of all loans.
func TotalDebt(doc *core.Document) core.Money {
	var total core.Money
	for _, l := range doc.Loans {
		total = total.Add(l.RemainingBalance)
	}
	return total
}

// MonthlySpend returns the amount spent per current category in the given
// month, in category order. Every category is listed, starting at zero. Loan
// payments, transactions booked against deleted categories and transactions
// with an unparseable date do not count.
func (e *Engine) MonthlySpend(doc *core.Document, year, month int) []core.CategoryAmount {
	out := make([]core.CategoryAmount, len(doc.Categories))
	index := make(map[string]int, len(doc.Categories))
	for i, c := range doc.Categories {
		out[i] = core.CategoryAmount{Name: c}
		index[c] = i
	}

	for _, t := range doc.Transactions {
		if t.Target.IsLoan() {
			continue
		}
		if !t.Date.Valid() {
			e.logger.Debug("skipping transaction with invalid date",
				log.FieldTransactionID, string(t.ID),
				"date", t.Date.String())
			continue
		}
		if !t.Date.InMonth(year, month) {
			continue
		}
		i, ok := index[t.Target.Category]
		if !ok {
			continue
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// BudgetStatus reports spend against cap for every budgeted category. Lines
// follow the category order; budgets for categories no longer listed come
// last, sorted by name, with zero spend.
func (e *Engine) BudgetStatus(doc *core.Document, year, month int) []core.BudgetLine {
	spend := e.MonthlySpend(doc, year, month)
	return budgetLines(doc, spend)
}

func budgetLines(doc *core.Document, spend []core.CategoryAmount) []core.BudgetLine {
	spent := make(map[string]core.Money, len(spend))
	for _, s := range spend {
		spent[s.Name] = s.Amount
	}

	names := make([]string, 0, len(doc.Budgets))
	seen := make(map[string]bool, len(doc.Budgets))
	for _, c := range doc.Categories {
		if _, ok := doc.Budgets[c]; ok && !seen[c] {
			names = append(names, c)
			seen[c] = true
		}
	}
	var orphans []string
	for c := range doc.Budgets {
		if !seen[c] {
			orphans = append(orphans, c)
		}
	}
	sort.Strings(orphans)
	names = append(names, orphans...)

	out := make([]core.BudgetLine, 0, len(names))
	for _, c := range names {
		line := core.BudgetLine{Category: c, Spent: spent[c], Cap: doc.Budgets[c]}
		line.PercentUsed = PercentUsed(line.Spent, line.Cap)
		line.Over = line.PercentUsed > 100
		out = append(out, line)
	}
	return out
}

// PercentUsed is spent/limit*100, or 0 when the limit is not positive. It is not
// capped at 100.
func PercentUsed(spent, limit core.Money) float64 {
	if !limit.IsPositive() {
		return 0
	}
	return float64(spent.Cents) * 100 / float64(limit.Cents)
}

// Overview gathers everything a dashboard shows for one month.
func (e *Engine) Overview(doc *core.Document, year, month int) core.MonthOverview {
	spend := e.MonthlySpend(doc, year, month)
	var total core.Money
	for _, s := range spend {
		total = total.Add(s.Amount)
	}

	var txs []core.Transaction
	for _, t := range doc.Transactions {
		if t.Date.Valid() && t.Date.InMonth(year, month) {
			txs = append(txs, t)
		}
	}
	sortNewestFirst(txs)

	return core.MonthOverview{
		Year:         year,
		Month:        month,
		Total:        total,
		ByCategory:   spend,
		Budgets:      budgetLines(doc, spend),
		Accounts:     append([]core.Account{}, doc.Accounts...),
		TotalBalance: TotalBalance(doc),
		Loans:        append([]core.Loan{}, doc.Loans...),
		TotalDebt:    TotalDebt(doc),
		Transactions: nonNil(txs),
	}
}

// Filter selects transactions. Empty fields match everything.
type Filter struct {
	// Target is an exact selector label such as "Food" or "Loan: Car".
	Target string
	// Description matches case-insensitively anywhere in the description.
	Description string
}

// FilterTransactions returns the matching transactions, newest first.
func FilterTransactions(doc *core.Document, f Filter) []core.Transaction {
	query := strings.ToLower(strings.TrimSpace(f.Description))
	target := strings.TrimSpace(f.Target)

	out := []core.Transaction{}
	for _, t := range doc.Transactions {
		if target != "" && t.Target.Label() != target {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out
}

// sortNewestFirst orders by the date text, descending. Invalid dates sort by
// their raw text, which keeps the order stable across saves.
func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.String() > txs[j].Date.String()
	})
}

func nonNil(txs []core.Transaction) []core.Transaction {
	if txs == nil {
		return []core.Transaction{}
	}
	return txs
}
