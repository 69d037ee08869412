package ledger

import (
	"fintrack/internal/core"
)

// AddLoan registers a loan with its full amount outstanding.
func (l *Ledger) AddLoan(name string, total core.Money) (core.Loan, error) {
	name = cleanName(name)
	if err := validateLoan(name, total); err != nil {
		return core.Loan{}, err
	}
	if l.loanIndexByName(name) >= 0 {
		return core.Loan{}, &core.DuplicateNameError{Kind: "loan", Name: name}
	}
	loan := core.Loan{
		ID:               core.LoanID(l.uniqueLoanID()),
		Name:             name,
		TotalAmount:      total,
		RemainingBalance: total,
	}
	l.doc.Loans = append(l.doc.Loans, loan)
	return loan, nil
}

// EditLoan renames a loan and/or changes its total. The amount already paid
// is preserved, so the remaining balance becomes newTotal - paid. A total
// below the amount already paid is rejected. Payments follow the loan by id,
// so their labels switch to the new name.
func (l *Ledger) EditLoan(name, newName string, newTotal core.Money) (core.Loan, error) {
	i := l.loanIndexByName(name)
	if i < 0 {
		return core.Loan{}, &core.NotFoundError{Kind: "loan", Key: name}
	}
	newName = cleanName(newName)
	if err := validateLoan(newName, newTotal); err != nil {
		return core.Loan{}, err
	}
	if newName != name && l.loanIndexByName(newName) >= 0 {
		return core.Loan{}, &core.DuplicateNameError{Kind: "loan", Name: newName}
	}
	loan := l.doc.Loans[i]
	paid, ok := loan.TotalAmount.CheckedSub(loan.RemainingBalance)
	if !ok {
		return core.Loan{}, core.NewValidationError(amountTooLarge)
	}
	if newTotal.Less(paid) {
		return core.Loan{}, core.NewValidationError("total amount cannot be below the " + paid.String() + " already paid")
	}
	remaining, ok := newTotal.CheckedSub(paid)
	if !ok {
		return core.Loan{}, core.NewValidationError(amountTooLarge)
	}

	loan.Name = newName
	loan.TotalAmount = newTotal
	loan.RemainingBalance = remaining
	l.doc.Loans[i] = loan

	for j, t := range l.doc.Transactions {
		if t.Target.IsLoan() && t.Target.LoanID == loan.ID {
			l.doc.Transactions[j].Target.LoanName = loan.Name
		}
	}
	return loan, nil
}

// DeleteLoan removes a loan. Its payments are kept with their last label and
// reported by DanglingLoanPayments; the number of such payments is returned.
func (l *Ledger) DeleteLoan(name string) (int, error) {
	i := l.loanIndexByName(name)
	if i < 0 {
		return 0, &core.NotFoundError{Kind: "loan", Key: name}
	}
	id := l.doc.Loans[i].ID
	l.doc.Loans = append(l.doc.Loans[:i], l.doc.Loans[i+1:]...)

	orphaned := 0
	for _, t := range l.doc.Transactions {
		if t.Target.IsLoan() && t.Target.LoanID == id {
			orphaned++
		}
	}
	return orphaned, nil
}

func validateLoan(name string, total core.Money) error {
	var problems []string
	if name == "" {
		problems = append(problems, "loan name cannot be empty")
	}
	if !total.IsPositive() {
		problems = append(problems, "total amount must be positive")
	} else if !total.InRange() {
		problems = append(problems, amountTooLarge)
	}
	if len(problems) > 0 {
		return core.NewValidationError(problems...)
	}
	return nil
}

func (l *Ledger) uniqueLoanID() string {
	for {
		id := l.newID()
		if l.loanIndexByID(core.LoanID(id)) < 0 {
			return id
		}
	}
}
