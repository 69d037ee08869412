package core

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the textual date format dates are written in.
const DateLayout = "2006-01-02"

// dateInputLayout also accepts unpadded month and day ("2024-1-5").
const dateInputLayout = "2006-1-2"

// LoanPrefix marks a loan payment selector in labels ("Loan: Car").
const LoanPrefix = "Loan: "

// DefaultDescription replaces an empty transaction description.
const DefaultDescription = "N/A"

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	TargetCategory TargetKind = iota
	TargetLoan
)

type (
	Theme string

	// Date is a calendar date. A Date parsed from a malformed persisted value
	// keeps the original text so it can be written back unchanged.
	Date struct {
		time.Time
		raw string
	}

	TransactionID string
	LoanID        string

	Account struct {
		Name    string `json:"name"`
		Balance Money  `json:"balance"`
	}

	Loan struct {
		ID               LoanID `json:"id"`
		Name             string `json:"name"`
		TotalAmount      Money  `json:"total_amount"`
		RemainingBalance Money  `json:"remaining_balance"`
	}

	TargetKind int

	// Target is what a transaction is booked against: a spending category or
	// a payment towards a loan. LoanName caches the loan's current name for
	// labelling and survives deletion of the loan.
	Target struct {
		Kind     TargetKind
		Category string
		LoanID   LoanID
		LoanName string
	}

	Transaction struct {
		ID          TransactionID
		Date        Date
		Description string
		Amount      Money
		Target      Target
		AccountName string
	}

	// Document is the whole persisted state of the tracker.
	Document struct {
		Accounts     []Account
		Categories   []string
		Budgets      map[string]Money
		Transactions []Transaction
		Loans        []Loan
		Theme        Theme
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Month and day may drop the leading zero.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateInputLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseStoredDate is like ParseDate but never fails: malformed input yields an
// invalid Date that remembers the original text.
func ParseStoredDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		return Date{raw: s}
	}
	return d
}

// Valid reports whether the date holds a real calendar day.
func (d Date) Valid() bool {
	return !d.IsZero()
}

// Validate returns ErrInvalidDate for a zero or malformed date.
func (d Date) Validate() error {
	if !d.Valid() {
		return ErrInvalidDate
	}
	return nil
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// String returns the YYYY-MM-DD form, or the original text of a malformed date.
func (d Date) String() string {
	if !d.Valid() {
		return d.raw
	}
	return d.Format(DateLayout)
}

// InMonth reports whether the date falls within year/month.
func (d Date) InMonth(year, month int) bool {
	return d.Valid() && d.Year() == year && d.Month() == month
}

// MarshalJSON writes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads a date string, keeping malformed text verbatim.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseStoredDate(s)
	return nil
}

// CategoryTarget books a transaction against a spending category.
func CategoryTarget(name string) Target {
	return Target{Kind: TargetCategory, Category: name}
}

// LoanTarget books a transaction as a payment towards a loan.
func LoanTarget(l Loan) Target {
	return Target{Kind: TargetLoan, LoanID: l.ID, LoanName: l.Name}
}

// IsLoan reports whether the target is a loan payment.
func (t Target) IsLoan() bool { return t.Kind == TargetLoan }

// Label is the human-readable selector: the category name or "Loan: <name>".
func (t Target) Label() string {
	if t.IsLoan() {
		return LoanLabel(t.LoanName)
	}
	return t.Category
}

// LoanLabel builds the selector label for a loan name.
func LoanLabel(name string) string { return LoanPrefix + name }

// IsLoanLabel reports whether a label selects a loan, returning the loan name.
func IsLoanLabel(label string) (string, bool) {
	if !strings.HasPrefix(label, LoanPrefix) {
		return "", false
	}
	return strings.TrimPrefix(label, LoanPrefix), true
}

// Paid returns how much of the loan has been repaid.
func (l Loan) Paid() Money {
	return l.TotalAmount.Sub(l.RemainingBalance)
}

// Valid reports whether the theme is one of the known values.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// DefaultDocument is the document a first run starts from.
func DefaultDocument() *Document {
	return &Document{
		Accounts:     []Account{{Name: "My Wallet", Balance: Money{}}},
		Categories:   []string{"Food", "Transport", "Shopping", "Bills", "Misc"},
		Budgets:      map[string]Money{"Food": {Cents: 50000}},
		Transactions: []Transaction{},
		Loans:        []Loan{},
		Theme:        ThemeLight,
	}
}

// EmptyDocument is a valid document with every collection empty.
func EmptyDocument() *Document {
	return &Document{
		Accounts:     []Account{},
		Categories:   []string{},
		Budgets:      map[string]Money{},
		Transactions: []Transaction{},
		Loans:        []Loan{},
		Theme:        ThemeLight,
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Accounts:     append([]Account{}, d.Accounts...),
		Categories:   append([]string{}, d.Categories...),
		Budgets:      make(map[string]Money, len(d.Budgets)),
		Transactions: append([]Transaction{}, d.Transactions...),
		Loans:        append([]Loan{}, d.Loans...),
		Theme:        d.Theme,
	}
	for k, v := range d.Budgets {
		out.Budgets[k] = v
	}
	return out
}

// transactionRecord is the persisted shape of a transaction. The category
// field carries the target label so older readers keep working.
type transactionRecord struct {
	ID          TransactionID `json:"id"`
	Date        Date          `json:"date"`
	Description string        `json:"description"`
	Amount      Money         `json:"amount"`
	Category    string        `json:"category"`
	AccountName string        `json:"account_name"`
	LoanID      LoanID        `json:"loan_id,omitempty"`
}

// MarshalJSON writes the transaction in its persisted shape.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionRecord{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Target.Label(),
		AccountName: t.AccountName,
		LoanID:      t.Target.LoanID,
	})
}
