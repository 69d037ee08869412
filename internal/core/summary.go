package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// BudgetLine is the status of one budgeted category for a month.
// PercentUsed is not capped: values above 100 signal an overrun.
type BudgetLine struct {
	Category    string  `json:"category"`
	Spent       Money   `json:"spent"`
	Cap         Money   `json:"cap"`
	PercentUsed float64 `json:"percent_used"`
	Over        bool    `json:"over"`
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year         int              `json:"year"`
	Month        int              `json:"month"` // 1-12
	Total        Money            `json:"total"`
	ByCategory   []CategoryAmount `json:"by_category"`
	Budgets      []BudgetLine     `json:"budgets"`
	Accounts     []Account        `json:"accounts"`
	TotalBalance Money            `json:"total_balance"`
	Loans        []Loan           `json:"loans"`
	TotalDebt    Money            `json:"total_debt"`
	Transactions []Transaction    `json:"transactions"`
}
