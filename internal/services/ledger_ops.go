package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// AddAccount creates an account with an opening balance.
func (s *LedgerService) AddAccount(ctx context.Context, name string, initial core.Money) error {
	return s.apply(ctx, &change{entity: EntityAccount, op: log.OpCreate, key: name}, func(l *ledger.Ledger) error {
		return l.AddAccount(name, initial)
	})
}

// DeleteAccount removes an account, reporting whether it existed. Nothing is
// saved when it did not.
func (s *LedgerService) DeleteAccount(ctx context.Context, name string) (bool, error) {
	var removed bool
	err := s.apply(ctx, &change{entity: EntityAccount, op: log.OpDelete, key: name}, func(l *ledger.Ledger) error {
		removed = l.DeleteAccount(name)
		if !removed {
			return errNoChange
		}
		return nil
	})
	return removed, ignoreNoChange(err)
}

// AddFunds credits an account.
func (s *LedgerService) AddFunds(ctx context.Context, name string, amount core.Money) error {
	return s.apply(ctx, &change{entity: EntityAccount, op: log.OpUpdate, key: name}, func(l *ledger.Ledger) error {
		return l.AddFunds(name, amount)
	})
}

// TransferFunds moves money between two accounts.
func (s *LedgerService) TransferFunds(ctx context.Context, from, to string, amount core.Money) error {
	return s.apply(ctx, &change{entity: EntityAccount, op: log.OpTransfer, key: from + "->" + to}, func(l *ledger.Ledger) error {
		return l.TransferFunds(from, to, amount)
	})
}

// AddCategory creates a spending category.
func (s *LedgerService) AddCategory(ctx context.Context, name string) error {
	return s.apply(ctx, &change{entity: EntityCategory, op: log.OpCreate, key: name}, func(l *ledger.Ledger) error {
		return l.AddCategory(name)
	})
}

// DeleteCategory removes a category and its budget.
func (s *LedgerService) DeleteCategory(ctx context.Context, name string) (bool, error) {
	var removed bool
	err := s.apply(ctx, &change{entity: EntityCategory, op: log.OpDelete, key: name}, func(l *ledger.Ledger) error {
		removed = l.DeleteCategory(name)
		if !removed {
			return errNoChange
		}
		return nil
	})
	return removed, ignoreNoChange(err)
}

// SetBudget sets a category's monthly cap.
func (s *LedgerService) SetBudget(ctx context.Context, category string, amount core.Money) error {
	return s.apply(ctx, &change{entity: EntityBudget, op: log.OpUpdate, key: category}, func(l *ledger.Ledger) error {
		return l.SetBudget(category, amount)
	})
}

// ClearBudget removes a category's cap.
func (s *LedgerService) ClearBudget(ctx context.Context, category string) (bool, error) {
	var removed bool
	err := s.apply(ctx, &change{entity: EntityBudget, op: log.OpDelete, key: category}, func(l *ledger.Ledger) error {
		removed = l.ClearBudget(category)
		if !removed {
			return errNoChange
		}
		return nil
	})
	return removed, ignoreNoChange(err)
}

// ApplyBudgetInput sets or, for blank input, clears a budget from free text.
func (s *LedgerService) ApplyBudgetInput(ctx context.Context, category, value string) error {
	return s.apply(ctx, &change{entity: EntityBudget, op: log.OpUpdate, key: category}, func(l *ledger.Ledger) error {
		return l.ApplyBudgetInput(category, value)
	})
}

// AddTransaction books a new transaction.
func (s *LedgerService) AddTransaction(ctx context.Context, in ledger.TransactionInput) (core.Transaction, error) {
	var tx core.Transaction
	c := &change{entity: EntityTransaction, op: log.OpCreate}
	err := s.apply(ctx, c, func(l *ledger.Ledger) error {
		var err error
		if tx, err = l.AddTransaction(in); err != nil {
			return err
		}
		c.key = string(tx.ID)
		c.touch(tx.Date)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// EditTransaction replaces a transaction's fields, keeping its id.
func (s *LedgerService) EditTransaction(ctx context.Context, id core.TransactionID, in ledger.TransactionInput) (core.Transaction, error) {
	var tx core.Transaction
	c := &change{entity: EntityTransaction, op: log.OpUpdate, key: string(id)}
	err := s.apply(ctx, c, func(l *ledger.Ledger) error {
		orig, ok := l.Transaction(id)
		var err error
		if tx, err = l.EditTransaction(id, in); err != nil {
			return err
		}
		if ok {
			c.touch(orig.Date)
		}
		c.touch(tx.Date)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction reverses and removes a transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id core.TransactionID) (core.Transaction, error) {
	var tx core.Transaction
	c := &change{entity: EntityTransaction, op: log.OpDelete, key: string(id)}
	err := s.apply(ctx, c, func(l *ledger.Ledger) error {
		var err error
		if tx, err = l.DeleteTransaction(id); err != nil {
			return err
		}
		c.touch(tx.Date)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// AddLoan registers a loan.
func (s *LedgerService) AddLoan(ctx context.Context, name string, total core.Money) (core.Loan, error) {
	var loan core.Loan
	err := s.apply(ctx, &change{entity: EntityLoan, op: log.OpCreate, key: name}, func(l *ledger.Ledger) error {
		var err error
		loan, err = l.AddLoan(name, total)
		return err
	})
	return loan, err
}

// EditLoan renames a loan and/or changes its total.
func (s *LedgerService) EditLoan(ctx context.Context, name, newName string, newTotal core.Money) (core.Loan, error) {
	var loan core.Loan
	err := s.apply(ctx, &change{entity: EntityLoan, op: log.OpUpdate, key: name}, func(l *ledger.Ledger) error {
		var err error
		loan, err = l.EditLoan(name, newName, newTotal)
		return err
	})
	return loan, err
}

// DeleteLoan removes a loan and returns how many payments it leaves dangling.
func (s *LedgerService) DeleteLoan(ctx context.Context, name string) (int, error) {
	var orphaned int
	err := s.apply(ctx, &change{entity: EntityLoan, op: log.OpDelete, key: name}, func(l *ledger.Ledger) error {
		var err error
		orphaned, err = l.DeleteLoan(name)
		return err
	})
	if err == nil && orphaned > 0 {
		s.logger.WarnContext(ctx, "Loan deleted with recorded payments",
			log.FieldLoan, name,
			"payments", orphaned)
	}
	return orphaned, err
}

// SetTheme stores the display theme.
func (s *LedgerService) SetTheme(ctx context.Context, theme core.Theme) error {
	return s.apply(ctx, &change{entity: EntityTheme, op: log.OpUpdate, key: string(theme)}, func(l *ledger.Ledger) error {
		return l.SetTheme(theme)
	})
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *LedgerService) ToggleTheme(ctx context.Context) (core.Theme, error) {
	var theme core.Theme
	err := s.apply(ctx, &change{entity: EntityTheme, op: log.OpUpdate}, func(l *ledger.Ledger) error {
		theme = l.ToggleTheme()
		return nil
	})
	return theme, err
}
