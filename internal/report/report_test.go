package report

import (
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
)

func tx(id, date string, cents int64, target core.Target, desc string) core.Transaction {
	return core.Transaction{
		ID:          core.TransactionID(id),
		Date:        core.ParseStoredDate(date),
		Description: desc,
		Amount:      core.Cents(cents),
		Target:      target,
		AccountName: "Wallet",
	}
}

func testDoc() *core.Document {
	car := core.Loan{ID: "l1", Name: "Car", TotalAmount: core.Cents(100000), RemainingBalance: core.Cents(80000)}
	doc := core.EmptyDocument()
	doc.Accounts = []core.Account{{Name: "Wallet", Balance: core.Cents(8000)}, {Name: "Bank", Balance: core.Cents(-500)}}
	doc.Categories = []string{"Food", "Transport"}
	doc.Budgets = map[string]core.Money{"Food": core.Cents(5000), "Transport": core.Cents(0), "Gone": core.Cents(100)}
	doc.Loans = []core.Loan{car, {ID: "l2", Name: "Phone", TotalAmount: core.Cents(300), RemainingBalance: core.Cents(300)}}
	doc.Transactions = []core.Transaction{
		tx("1", "2024-01-05", 2000, core.CategoryTarget("Food"), "groceries"),
		tx("2", "2024-01-20", 4000, core.CategoryTarget("Food"), "Restaurant"),
		tx("3", "2024-02-01", 999, core.CategoryTarget("Food"), "next month"),
		tx("4", "2024-01-10", 20000, core.LoanTarget(car), "car payment"),
		tx("5", "2024-01-11", 700, core.CategoryTarget("Deleted"), "old category"),
		tx("6", "05/01/2024", 300, core.CategoryTarget("Food"), "bad date"),
		tx("7", "2024-01-31", 150, core.CategoryTarget("Transport"), "bus"),
	}
	return doc
}

func TestTotals(t *testing.T) {
	doc := testDoc()
	if got := TotalBalance(doc); got.Cents != 7500 {
		t.Fatalf("TotalBalance = %d", got.Cents)
	}
	if got := TotalDebt(doc); got.Cents != 80300 {
		t.Fatalf("TotalDebt = %d", got.Cents)
	}
	if got := TotalBalance(core.EmptyDocument()); got.Cents != 0 {
		t.Fatalf("empty TotalBalance = %d", got.Cents)
	}
}

func TestMonthlySpend(t *testing.T) {
	e := New(nil)
	got := e.MonthlySpend(testDoc(), 2024, 1)
	want := []core.CategoryAmount{
		{Name: "Food", Amount: core.Cents(6000)},
		{Name: "Transport", Amount: core.Cents(150)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MonthlySpend = %+v, want %+v", got, want)
	}

	empty := e.MonthlySpend(testDoc(), 2023, 6)
	for _, c := range empty {
		if c.Amount.Cents != 0 {
			t.Fatalf("expected zero spend for %s, got %d", c.Name, c.Amount.Cents)
		}
	}
	if len(empty) != 2 {
		t.Fatalf("every category must be listed, got %v", empty)
	}
}

func TestMonthlySpendExcludesLoanPayments(t *testing.T) {
	e := New(nil)
	doc := testDoc()
	before := e.MonthlySpend(doc, 2024, 1)
	doc.Transactions = append(doc.Transactions, tx("8", "2024-01-15", 12345, core.LoanTarget(doc.Loans[0]), ""))
	after := e.MonthlySpend(doc, 2024, 1)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("loan payment changed spend: %v -> %v", before, after)
	}
}

func TestBudgetStatus(t *testing.T) {
	got := New(nil).BudgetStatus(testDoc(), 2024, 1)
	want := []core.BudgetLine{
		{Category: "Food", Spent: core.Cents(6000), Cap: core.Cents(5000), PercentUsed: 120, Over: true},
		{Category: "Transport", Spent: core.Cents(150), Cap: core.Cents(0), PercentUsed: 0},
		{Category: "Gone", Spent: core.Cents(0), Cap: core.Cents(100), PercentUsed: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BudgetStatus = %+v\nwant %+v", got, want)
	}
}

func TestPercentUsed(t *testing.T) {
	tests := []struct {
		spent, limit int64
		want         float64
	}{
		{0, 5000, 0},
		{2500, 5000, 50},
		{5000, 5000, 100},
		{7500, 5000, 150},
		{100, 0, 0},
		{100, -1, 0},
	}
	for _, tt := range tests {
		if got := PercentUsed(core.Cents(tt.spent), core.Cents(tt.limit)); got != tt.want {
			t.Fatalf("PercentUsed(%d, %d) = %v, want %v", tt.spent, tt.limit, got, tt.want)
		}
	}
}

func TestOverview(t *testing.T) {
	o := New(nil).Overview(testDoc(), 2024, 1)
	if o.Total.Cents != 6150 {
		t.Fatalf("Total = %d", o.Total.Cents)
	}
	if o.TotalBalance.Cents != 7500 || o.TotalDebt.Cents != 80300 {
		t.Fatalf("balance=%d debt=%d", o.TotalBalance.Cents, o.TotalDebt.Cents)
	}
	var ids []string
	for _, t := range o.Transactions {
		ids = append(ids, string(t.ID))
	}
	if want := []string{"7", "2", "5", "4", "1"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("transactions = %v, want %v", ids, want)
	}
	if len(o.Budgets) != 3 || !o.Budgets[0].Over {
		t.Fatalf("budgets = %+v", o.Budgets)
	}

	empty := New(nil).Overview(core.EmptyDocument(), 2024, 1)
	if empty.Transactions == nil || empty.Accounts == nil {
		t.Fatalf("empty overview must use empty slices")
	}
}

func TestFilterTransactions(t *testing.T) {
	doc := testDoc()
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"3", "7", "2", "5", "4", "1", "6"}},
		{"category", Filter{Target: "Food"}, []string{"3", "2", "1", "6"}},
		{"loan label", Filter{Target: "Loan: Car"}, []string{"4"}},
		{"description case-insensitive", Filter{Description: "REST"}, []string{"2"}},
		{"both", Filter{Target: "Food", Description: "e"}, []string{"3", "2", "1", "6"}},
		{"no match", Filter{Target: "Transport", Description: "train"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []string{}
			for _, tx := range FilterTransactions(doc, tt.filter) {
				ids = append(ids, string(tx.ID))
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestMonthNavigation(t *testing.T) {
	m := Month{Year: 2024, Month: 12}
	if got := m.Next(); got != (Month{Year: 2025, Month: 1}) {
		t.Fatalf("Next = %v", got)
	}
	if got := (Month{Year: 2024, Month: 1}).Prev(); got != (Month{Year: 2023, Month: 12}) {
		t.Fatalf("Prev = %v", got)
	}
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	if !(Month{Year: 2024, Month: 2}).CanAdvance(now) {
		t.Fatalf("February should advance to March")
	}
	if (Month{Year: 2024, Month: 3}).CanAdvance(now) {
		t.Fatalf("current month must not advance")
	}
	if MonthOf(now).String() != "2024-03" {
		t.Fatalf("String = %s", MonthOf(now))
	}
	if _, err := NewMonth(2024, 13); err == nil {
		t.Fatalf("month 13 accepted")
	}
}
