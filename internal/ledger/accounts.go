package ledger

import (
	"fintrack/internal/core"
)

// amountTooLarge is reported when a balance would leave the representable range.
const amountTooLarge = "amount too large"

// AddAccount appends an account with an opening balance.
func (l *Ledger) AddAccount(name string, initial core.Money) error {
	name = cleanName(name)
	if name == "" {
		return core.NewValidationError("account name cannot be empty")
	}
	if !initial.InRange() {
		return core.NewValidationError(amountTooLarge)
	}
	if l.accountIndex(name) >= 0 {
		return &core.DuplicateNameError{Kind: "account", Name: name}
	}
	l.doc.Accounts = append(l.doc.Accounts, core.Account{Name: name, Balance: initial})
	return nil
}

// DeleteAccount removes the named account. Transactions that reference it keep
// the name as a label. Deleting an absent account is a no-op and reports false.
func (l *Ledger) DeleteAccount(name string) bool {
	i := l.accountIndex(name)
	if i < 0 {
		return false
	}
	l.doc.Accounts = append(l.doc.Accounts[:i], l.doc.Accounts[i+1:]...)
	return true
}

// AddFunds credits an account.
func (l *Ledger) AddFunds(name string, amount core.Money) error {
	var problems []string
	if !amount.IsPositive() {
		problems = append(problems, "amount must be positive")
	}
	i := l.accountIndex(name)
	if i < 0 {
		problems = append(problems, "account \""+name+"\" does not exist")
	}
	if len(problems) > 0 {
		return core.NewValidationError(problems...)
	}
	balance, ok := l.doc.Accounts[i].Balance.CheckedAdd(amount)
	if !ok {
		return core.NewValidationError(amountTooLarge)
	}
	l.doc.Accounts[i].Balance = balance
	return nil
}

// TransferFunds moves amount from one account to another. Either both
// balances change or neither does.
func (l *Ledger) TransferFunds(from, to string, amount core.Money) error {
	var problems []string
	if from == to {
		problems = append(problems, "cannot transfer to the same account")
	}
	if !amount.IsPositive() {
		problems = append(problems, "amount must be positive")
	}
	fi, ti := l.accountIndex(from), l.accountIndex(to)
	if fi < 0 {
		problems = append(problems, "account \""+from+"\" does not exist")
	}
	if ti < 0 {
		problems = append(problems, "account \""+to+"\" does not exist")
	}
	if len(problems) > 0 {
		return core.NewValidationError(problems...)
	}
	src := l.doc.Accounts[fi]
	if src.Balance.Less(amount) {
		return &core.InsufficientFundsError{Account: src.Name, Balance: src.Balance, Requested: amount}
	}
	debited, okFrom := src.Balance.CheckedSub(amount)
	credited, okTo := l.doc.Accounts[ti].Balance.CheckedAdd(amount)
	if !okFrom || !okTo {
		return core.NewValidationError(amountTooLarge)
	}
	l.doc.Accounts[fi].Balance = debited
	l.doc.Accounts[ti].Balance = credited
	return nil
}
