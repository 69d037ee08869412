package ledger

import (
	"strings"

	"fintrack/internal/core"
)

// AddCategory appends a spending category. Names starting with the loan
// selector prefix are reserved.
func (l *Ledger) AddCategory(name string) error {
	name = cleanName(name)
	if name == "" {
		return core.NewValidationError("category name cannot be empty")
	}
	if strings.HasPrefix(name, core.LoanPrefix) {
		return core.NewValidationError("category name cannot start with \"" + core.LoanPrefix + "\"")
	}
	if l.categoryIndex(name) >= 0 {
		return &core.DuplicateNameError{Kind: "category", Name: name}
	}
	l.doc.Categories = append(l.doc.Categories, name)
	return nil
}

// DeleteCategory removes a category and its budget. Transactions booked
// against it are left untouched. Deleting an absent category reports false.
func (l *Ledger) DeleteCategory(name string) bool {
	i := l.categoryIndex(name)
	if i < 0 {
		return false
	}
	l.doc.Categories = append(l.doc.Categories[:i], l.doc.Categories[i+1:]...)
	delete(l.doc.Budgets, name)
	return true
}

// SetBudget sets the monthly cap for a category.
func (l *Ledger) SetBudget(category string, amount core.Money) error {
	category = cleanName(category)
	var problems []string
	if category == "" {
		problems = append(problems, "budget category cannot be empty")
	}
	if amount.IsNegative() {
		problems = append(problems, "budget must not be negative")
	} else if !amount.InRange() {
		problems = append(problems, amountTooLarge)
	}
	if len(problems) > 0 {
		return core.NewValidationError(problems...)
	}
	l.doc.Budgets[category] = amount
	return nil
}

// ClearBudget removes the cap for a category, reporting whether one existed.
func (l *Ledger) ClearBudget(category string) bool {
	if _, ok := l.doc.Budgets[category]; !ok {
		return false
	}
	delete(l.doc.Budgets, category)
	return true
}

// ApplyBudgetInput handles free-form budget input the way a form does: a blank
// value clears the budget, anything else must parse as a non-negative amount.
func (l *Ledger) ApplyBudgetInput(category, value string) error {
	if strings.TrimSpace(value) == "" {
		l.ClearBudget(category)
		return nil
	}
	amount, err := core.ParseNonNegativeAmount(value)
	if err != nil {
		return core.NewValidationError("enter a valid number for \"" + category + "\"")
	}
	return l.SetBudget(category, amount)
}
