package ledger

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/core"
)

// TransactionInput is the user-editable part of a transaction.
type TransactionInput struct {
	Date        string
	Amount      core.Money
	Target      core.Target
	Account     string
	Description string
}

// Selector is one choice for a transaction's target.
type Selector struct {
	Label  string
	Target core.Target
}

// Selectors lists every valid target: categories sorted by name, then every
// loan that still has a positive remaining balance, also sorted by name.
func (l *Ledger) Selectors() []Selector {
	cats := append([]string(nil), l.doc.Categories...)
	sort.Strings(cats)
	loans := make([]core.Loan, 0, len(l.doc.Loans))
	for _, ln := range l.doc.Loans {
		if ln.RemainingBalance.IsPositive() {
			loans = append(loans, ln)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].Name < loans[j].Name })

	out := make([]Selector, 0, len(cats)+len(loans))
	for _, c := range cats {
		out = append(out, Selector{Label: c, Target: core.CategoryTarget(c)})
	}
	for _, ln := range loans {
		t := core.LoanTarget(ln)
		out = append(out, Selector{Label: t.Label(), Target: t})
	}
	return out
}

// TargetFromLabel maps a selector label to a target. It never fails: a label
// naming an unknown loan yields a loan target without id, which transaction
// validation then rejects.
func (l *Ledger) TargetFromLabel(label string) core.Target {
	label = strings.TrimSpace(label)
	if name, ok := core.IsLoanLabel(label); ok {
		if i := l.loanIndexByName(name); i >= 0 {
			return core.LoanTarget(l.doc.Loans[i])
		}
		return core.Target{Kind: core.TargetLoan, LoanName: name}
	}
	return core.CategoryTarget(label)
}

// AddTransaction validates the input, books its effect and appends the record.
func (l *Ledger) AddTransaction(in TransactionInput) (core.Transaction, error) {
	tx, err := l.validate(in, nil)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := l.rebook(nil, &tx); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = core.TransactionID(l.uniqueTransactionID())
	l.doc.Transactions = append(l.doc.Transactions, tx)
	return tx, nil
}

// EditTransaction replaces every field of an existing transaction but its id.
// The new fields are validated against the state the ledger would have once
// the original effect is reversed; nothing changes unless they are valid.
func (l *Ledger) EditTransaction(id core.TransactionID, in TransactionInput) (core.Transaction, error) {
	i := l.transactionIndex(id)
	if i < 0 {
		return core.Transaction{}, &core.NotFoundError{Kind: "transaction", Key: string(id)}
	}
	orig := l.doc.Transactions[i]
	tx, err := l.validate(in, &orig)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = orig.ID
	if err := l.rebook(&orig, &tx); err != nil {
		return core.Transaction{}, err
	}
	l.doc.Transactions[i] = tx
	return tx, nil
}

// DeleteTransaction reverses a transaction's effect and removes it.
func (l *Ledger) DeleteTransaction(id core.TransactionID) (core.Transaction, error) {
	i := l.transactionIndex(id)
	if i < 0 {
		return core.Transaction{}, &core.NotFoundError{Kind: "transaction", Key: string(id)}
	}
	tx := l.doc.Transactions[i]
	if err := l.rebook(&tx, nil); err != nil {
		return core.Transaction{}, err
	}
	l.doc.Transactions = append(l.doc.Transactions[:i], l.doc.Transactions[i+1:]...)
	return tx, nil
}

// DanglingLoanPayments returns loan payments whose loan no longer exists.
func (l *Ledger) DanglingLoanPayments() []core.Transaction {
	var out []core.Transaction
	for _, t := range l.doc.Transactions {
		if t.Target.IsLoan() && l.loanIndexByID(t.Target.LoanID) < 0 {
			out = append(out, t)
		}
	}
	return out
}

// validate checks in against the current state. When orig is set, its effect
// is treated as already reversed.
func (l *Ledger) validate(in TransactionInput, orig *core.Transaction) (core.Transaction, error) {
	var problems []string

	date, err := core.ParseDate(in.Date)
	if err != nil {
		problems = append(problems, "date must be YYYY-MM-DD")
	}
	if !in.Amount.IsPositive() {
		problems = append(problems, "amount must be positive")
	} else if !in.Amount.InRange() {
		problems = append(problems, amountTooLarge)
	}

	account := strings.TrimSpace(in.Account)
	if account == "" {
		problems = append(problems, "account must be selected")
	} else if l.accountIndex(account) < 0 {
		problems = append(problems, fmt.Sprintf("account %q does not exist", account))
	}

	target := in.Target
	switch target.Kind {
	case core.TargetCategory:
		target.Category = strings.TrimSpace(target.Category)
		if target.Category == "" {
			problems = append(problems, "category must be selected")
		} else if l.categoryIndex(target.Category) < 0 {
			problems = append(problems, fmt.Sprintf("category %q does not exist", target.Category))
		}
		target.LoanID, target.LoanName = "", ""
	case core.TargetLoan:
		li := l.loanIndexByID(target.LoanID)
		if li < 0 {
			problems = append(problems, fmt.Sprintf("loan %q does not exist", target.LoanName))
			break
		}
		loan := l.doc.Loans[li]
		remaining := loan.RemainingBalance
		if orig != nil && orig.Target.IsLoan() && orig.Target.LoanID == loan.ID {
			if r, ok := remaining.CheckedAdd(orig.Amount); ok {
				remaining = r
			}
		}
		if !remaining.IsPositive() {
			problems = append(problems, fmt.Sprintf("loan %q is already paid off", loan.Name))
		}
		target = core.LoanTarget(loan)
	default:
		problems = append(problems, "unknown transaction target")
	}

	if len(problems) > 0 {
		return core.Transaction{}, core.NewValidationError(problems...)
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = core.DefaultDescription
	}
	return core.Transaction{
		Date:        date,
		Description: desc,
		Amount:      in.Amount,
		Target:      target,
		AccountName: account,
	}, nil
}

// rebook reverses the effect of remove and books add; either may be nil.
// Booking debits the account and, for a loan payment, reduces the loan's
// remaining balance. References to deleted accounts or loans are skipped.
// Every new balance is computed before any is stored, so a result outside
// the representable range leaves the ledger untouched.
func (l *Ledger) rebook(remove, add *core.Transaction) error {
	accounts := make(map[int]core.Money, 2)
	loans := make(map[int]core.Money, 2)
	post := func(tx *core.Transaction, sign int64) bool {
		if tx == nil {
			return true
		}
		delta := core.Money{Cents: sign * tx.Amount.Cents}
		if i := l.accountIndex(tx.AccountName); i >= 0 {
			cur, seen := accounts[i]
			if !seen {
				cur = l.doc.Accounts[i].Balance
			}
			next, ok := cur.CheckedSub(delta)
			if !ok {
				return false
			}
			accounts[i] = next
		}
		if tx.Target.IsLoan() {
			if i := l.loanIndexByID(tx.Target.LoanID); i >= 0 {
				cur, seen := loans[i]
				if !seen {
					cur = l.doc.Loans[i].RemainingBalance
				}
				next, ok := cur.CheckedSub(delta)
				if !ok {
					return false
				}
				loans[i] = next
			}
		}
		return true
	}
	if !post(remove, -1) || !post(add, 1) {
		return core.NewValidationError(amountTooLarge)
	}
	for i, b := range accounts {
		l.doc.Accounts[i].Balance = b
	}
	for i, b := range loans {
		l.doc.Loans[i].RemainingBalance = b
	}
	return nil
}

func (l *Ledger) uniqueTransactionID() string {
	for {
		id := l.newID()
		if l.transactionIndex(core.TransactionID(id)) < 0 {
			return id
		}
	}
}
