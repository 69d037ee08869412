package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"fintrack/internal/core"
)

func seqIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

// newTestLedger builds Wallet(100), Savings(0), category Food with a 50 budget
// and a Car loan of 1000.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := New(core.EmptyDocument(), seqIDs())
	if err := l.AddAccount("Wallet", core.Cents(10000)); err != nil {
		t.Fatalf("add wallet: %v", err)
	}
	if err := l.AddAccount("Savings", core.Cents(0)); err != nil {
		t.Fatalf("add savings: %v", err)
	}
	if err := l.AddCategory("Food"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := l.SetBudget("Food", core.Cents(5000)); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if _, err := l.AddLoan("Car", core.Cents(100000)); err != nil {
		t.Fatalf("add loan: %v", err)
	}
	return l
}

func balance(t *testing.T, l *Ledger, name string) int64 {
	t.Helper()
	a, ok := l.Account(name)
	if !ok {
		t.Fatalf("account %q missing", name)
	}
	return a.Balance.Cents
}

func remaining(t *testing.T, l *Ledger, name string) int64 {
	t.Helper()
	ln, ok := l.Loan(name)
	if !ok {
		t.Fatalf("loan %q missing", name)
	}
	return ln.RemainingBalance.Cents
}

func food(date string, cents int64) TransactionInput {
	return TransactionInput{Date: date, Amount: core.Cents(cents), Target: core.CategoryTarget("Food"), Account: "Wallet"}
}

func TestAddAccountValidation(t *testing.T) {
	l := newTestLedger(t)
	if err := l.AddAccount("  ", core.Cents(0)); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("empty name: got %v", err)
	}
	if err := l.AddAccount("Wallet", core.Cents(0)); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("duplicate: got %v", err)
	}
	if len(l.Accounts()) != 2 {
		t.Fatalf("rejected adds must not change accounts: %v", l.Accounts())
	}
}

func TestDeleteAccountKeepsTransactions(t *testing.T) {
	l := newTestLedger(t)
	tx, err := l.AddTransaction(food("2024-01-05", 2000))
	if err != nil {
		t.Fatalf("add tx: %v", err)
	}
	if !l.DeleteAccount("Wallet") {
		t.Fatalf("expected wallet removed")
	}
	if l.DeleteAccount("Wallet") {
		t.Fatalf("second delete must be a no-op")
	}
	got, ok := l.Transaction(tx.ID)
	if !ok || got.AccountName != "Wallet" {
		t.Fatalf("transaction lost its account label: %+v", got)
	}
	// Deleting a transaction of a removed account only reverses what still exists.
	if _, err := l.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("delete tx: %v", err)
	}
}

func TestAddFunds(t *testing.T) {
	l := newTestLedger(t)
	if err := l.AddFunds("Wallet", core.Cents(550)); err != nil {
		t.Fatalf("add funds: %v", err)
	}
	if got := balance(t, l, "Wallet"); got != 10550 {
		t.Fatalf("balance = %d", got)
	}
	for _, tc := range []struct {
		name   string
		amount int64
	}{
		{"Wallet", 0},
		{"Wallet", -5},
		{"Nope", 100},
	} {
		if err := l.AddFunds(tc.name, core.Cents(tc.amount)); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("AddFunds(%q, %d): got %v", tc.name, tc.amount, err)
		}
	}
	if got := balance(t, l, "Wallet"); got != 10550 {
		t.Fatalf("rejected funds changed balance: %d", got)
	}
}

func TestTransferFunds(t *testing.T) {
	l := newTestLedger(t)
	if err := l.TransferFunds("Wallet", "Savings", core.Cents(5000)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if w, s := balance(t, l, "Wallet"), balance(t, l, "Savings"); w != 5000 || s != 5000 {
		t.Fatalf("after transfer wallet=%d savings=%d", w, s)
	}

	err := l.TransferFunds("Wallet", "Savings", core.Cents(20000))
	var insufficient *core.InsufficientFundsError
	if !errors.As(err, &insufficient) || !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if w, s := balance(t, l, "Wallet"), balance(t, l, "Savings"); w != 5000 || s != 5000 {
		t.Fatalf("failed transfer changed balances wallet=%d savings=%d", w, s)
	}

	bad := []struct {
		from, to string
		amount   int64
	}{
		{"Wallet", "Wallet", 100},
		{"Wallet", "Savings", 0},
		{"Wallet", "Savings", -100},
		{"Ghost", "Savings", 100},
		{"Wallet", "Ghost", 100},
	}
	for _, tc := range bad {
		if err := l.TransferFunds(tc.from, tc.to, core.Cents(tc.amount)); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("TransferFunds(%q,%q,%d): got %v", tc.from, tc.to, tc.amount, err)
		}
	}
}

func TestTransferPreservesSum(t *testing.T) {
	for _, amount := range []int64{1, 999, 5000, 10000} {
		l := newTestLedger(t)
		before := balance(t, l, "Wallet") + balance(t, l, "Savings")
		if err := l.TransferFunds("Wallet", "Savings", core.Cents(amount)); err != nil {
			t.Fatalf("transfer %d: %v", amount, err)
		}
		if after := balance(t, l, "Wallet") + balance(t, l, "Savings"); after != before {
			t.Fatalf("sum changed: %d -> %d", before, after)
		}
	}
}

func TestCategoryRules(t *testing.T) {
	l := newTestLedger(t)
	if err := l.AddCategory("Food"); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("duplicate category: %v", err)
	}
	if err := l.AddCategory(""); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("empty category: %v", err)
	}
	if err := l.AddCategory("Loan: Boat"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("reserved prefix accepted: %v", err)
	}
}

func TestDeleteCategoryRemovesBudgetOnly(t *testing.T) {
	l := newTestLedger(t)
	tx, err := l.AddTransaction(food("2024-01-05", 2000))
	if err != nil {
		t.Fatalf("add tx: %v", err)
	}
	if !l.DeleteCategory("Food") {
		t.Fatalf("expected category removed")
	}
	if _, ok := l.Budgets()["Food"]; ok {
		t.Fatalf("budget survived category deletion")
	}
	got, ok := l.Transaction(tx.ID)
	if !ok || got.Target.Label() != "Food" || got.Amount.Cents != 2000 {
		t.Fatalf("transaction changed: %+v", got)
	}
	if got := balance(t, l, "Wallet"); got != 8000 {
		t.Fatalf("balance changed by category deletion: %d", got)
	}
}

func TestBudgetInput(t *testing.T) {
	l := newTestLedger(t)
	if err := l.ApplyBudgetInput("Food", "75,5"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := l.Budgets()["Food"].Cents; got != 7550 {
		t.Fatalf("budget = %d", got)
	}
	if err := l.ApplyBudgetInput("Food", "0"); err != nil {
		t.Fatalf("zero budget: %v", err)
	}
	if err := l.ApplyBudgetInput("Food", "-1"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("negative budget: %v", err)
	}
	if err := l.ApplyBudgetInput("Food", "lots"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("garbage budget: %v", err)
	}
	if err := l.ApplyBudgetInput("Food", " "); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := l.Budgets()["Food"]; ok {
		t.Fatalf("blank input did not clear the budget")
	}
}

func TestAddTransactionScenario(t *testing.T) {
	l := newTestLedger(t)
	tx, err := l.AddTransaction(food("2024-01-05", 2000))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID == "" {
		t.Fatalf("missing id")
	}
	if tx.Description != core.DefaultDescription {
		t.Fatalf("description = %q", tx.Description)
	}
	if got := balance(t, l, "Wallet"); got != 8000 {
		t.Fatalf("wallet = %d, want 8000", got)
	}
}

func TestLoanPaymentScenario(t *testing.T) {
	l := newTestLedger(t)
	in := TransactionInput{Date: "2024-01-10", Amount: core.Cents(20000), Target: l.TargetFromLabel("Loan: Car"), Account: "Wallet"}
	if _, err := l.AddTransaction(in); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if got := remaining(t, l, "Car"); got != 80000 {
		t.Fatalf("remaining = %d, want 80000", got)
	}
	if got := balance(t, l, "Wallet"); got != -10000 {
		t.Fatalf("wallet = %d, want -10000", got)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	l := newTestLedger(t)
	before := l.Snapshot()

	_, err := l.AddTransaction(TransactionInput{
		Date:    "05/01/2024",
		Amount:  core.Cents(0),
		Target:  core.CategoryTarget("Rent"),
		Account: "Ghost",
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Problems) != 4 {
		t.Fatalf("expected 4 problems, got %v", verr.Problems)
	}
	if !reflect.DeepEqual(before, l.Snapshot()) {
		t.Fatalf("rejected transaction mutated the ledger")
	}

	if _, err := l.AddTransaction(TransactionInput{Date: "2024-01-01", Amount: core.Cents(100), Target: l.TargetFromLabel("Loan: Boat"), Account: "Wallet"}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("unknown loan accepted: %v", err)
	}
}

func TestPaidOffLoanRejectsPayments(t *testing.T) {
	l := newTestLedger(t)
	car := l.TargetFromLabel("Loan: Car")
	if _, err := l.AddTransaction(TransactionInput{Date: "2024-01-01", Amount: core.Cents(100000), Target: car, Account: "Wallet"}); err != nil {
		t.Fatalf("pay off: %v", err)
	}
	if _, err := l.AddTransaction(TransactionInput{Date: "2024-01-02", Amount: core.Cents(100), Target: car, Account: "Wallet"}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("payment on paid-off loan accepted: %v", err)
	}
	for _, s := range l.Selectors() {
		if s.Label == "Loan: Car" {
			t.Fatalf("paid-off loan still offered as selector")
		}
	}
}

func TestAddDeleteRoundTrip(t *testing.T) {
	inputs := []func(l *Ledger) TransactionInput{
		func(*Ledger) TransactionInput { return food("2024-01-05", 2000) },
		func(*Ledger) TransactionInput { return food("2023-12-31", 1) },
		func(l *Ledger) TransactionInput {
			return TransactionInput{Date: "2024-02-01", Amount: core.Cents(45678), Target: l.TargetFromLabel("Loan: Car"), Account: "Savings"}
		},
	}
	for i, mk := range inputs {
		l := newTestLedger(t)
		before := l.Snapshot()
		tx, err := l.AddTransaction(mk(l))
		if err != nil {
			t.Fatalf("case %d add: %v", i, err)
		}
		if _, err := l.DeleteTransaction(tx.ID); err != nil {
			t.Fatalf("case %d delete: %v", i, err)
		}
		if !reflect.DeepEqual(before, l.Snapshot()) {
			t.Fatalf("case %d: add+delete did not restore the ledger", i)
		}
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	l := newTestLedger(t)
	if _, err := l.DeleteTransaction("missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v", err)
	}
	if _, err := l.EditTransaction("missing", food("2024-01-01", 1)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestEditEqualsDeletePlusAdd(t *testing.T) {
	edits := []func(l *Ledger) TransactionInput{
		func(*Ledger) TransactionInput { return food("2024-01-06", 3500) },
		func(l *Ledger) TransactionInput {
			return TransactionInput{Date: "2024-01-06", Amount: core.Cents(1000), Target: l.TargetFromLabel("Loan: Car"), Account: "Savings"}
		},
	}
	for i, mk := range edits {
		a := newTestLedger(t)
		b := newTestLedger(t)
		txA, err := a.AddTransaction(food("2024-01-05", 2000))
		if err != nil {
			t.Fatalf("add a: %v", err)
		}
		txB, err := b.AddTransaction(food("2024-01-05", 2000))
		if err != nil {
			t.Fatalf("add b: %v", err)
		}

		edited, err := a.EditTransaction(txA.ID, mk(a))
		if err != nil {
			t.Fatalf("case %d edit: %v", i, err)
		}
		if edited.ID != txA.ID {
			t.Fatalf("edit changed id %s -> %s", txA.ID, edited.ID)
		}

		if _, err := b.DeleteTransaction(txB.ID); err != nil {
			t.Fatalf("delete b: %v", err)
		}
		if _, err := b.AddTransaction(mk(b)); err != nil {
			t.Fatalf("re-add b: %v", err)
		}

		if !reflect.DeepEqual(a.Accounts(), b.Accounts()) || !reflect.DeepEqual(a.Loans(), b.Loans()) {
			t.Fatalf("case %d: edit balances %v %v differ from delete+add %v %v", i, a.Accounts(), a.Loans(), b.Accounts(), b.Loans())
		}
	}
}

func TestEditRejectedLeavesStateUnchanged(t *testing.T) {
	l := newTestLedger(t)
	tx, err := l.AddTransaction(food("2024-01-05", 2000))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	before := l.Snapshot()
	bad := food("not-a-date", 2000)
	if _, err := l.EditTransaction(tx.ID, bad); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !reflect.DeepEqual(before, l.Snapshot()) {
		t.Fatalf("rejected edit mutated the ledger")
	}
}

func TestEditPaymentThatPaidOffLoan(t *testing.T) {
	l := newTestLedger(t)
	car := l.TargetFromLabel("Loan: Car")
	tx, err := l.AddTransaction(TransactionInput{Date: "2024-01-01", Amount: core.Cents(100000), Target: car, Account: "Wallet"})
	if err != nil {
		t.Fatalf("pay off: %v", err)
	}
	// Once reversed the loan is open again, so the payment itself stays editable.
	edited, err := l.EditTransaction(tx.ID, TransactionInput{Date: "2024-01-01", Amount: core.Cents(60000), Target: car, Account: "Wallet", Description: "partial"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Description != "partial" {
		t.Fatalf("description = %q", edited.Description)
	}
	if got := remaining(t, l, "Car"); got != 40000 {
		t.Fatalf("remaining = %d", got)
	}
}

func TestRenameLoanRelabelsPayments(t *testing.T) {
	l := newTestLedger(t)
	for _, amount := range []int64{100, 200, 300} {
		in := TransactionInput{Date: "2024-03-01", Amount: core.Cents(amount), Target: l.TargetFromLabel("Loan: Car"), Account: "Wallet"}
		if _, err := l.AddTransaction(in); err != nil {
			t.Fatalf("payment: %v", err)
		}
	}
	if _, err := l.AddTransaction(food("2024-03-01", 50)); err != nil {
		t.Fatalf("food: %v", err)
	}

	loan, err := l.EditLoan("Car", "Auto", core.Cents(100000))
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if loan.RemainingBalance.Cents != 99400 {
		t.Fatalf("remaining = %d", loan.RemainingBalance.Cents)
	}

	oldCount, newCount := 0, 0
	for _, tx := range l.Transactions() {
		switch tx.Target.Label() {
		case "Loan: Car":
			oldCount++
		case "Loan: Auto":
			newCount++
		}
	}
	if oldCount != 0 || newCount != 3 {
		t.Fatalf("old=%d new=%d", oldCount, newCount)
	}
	if _, ok := l.Loan("Car"); ok {
		t.Fatalf("old loan name still resolvable")
	}
}

func TestEditLoanTotals(t *testing.T) {
	l := newTestLedger(t)
	if _, err := l.AddTransaction(TransactionInput{Date: "2024-01-01", Amount: core.Cents(30000), Target: l.TargetFromLabel("Loan: Car"), Account: "Wallet"}); err != nil {
		t.Fatalf("payment: %v", err)
	}
	loan, err := l.EditLoan("Car", "Car", core.Cents(50000))
	if err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if loan.Paid().Cents != 30000 || loan.RemainingBalance.Cents != 20000 {
		t.Fatalf("paid=%d remaining=%d", loan.Paid().Cents, loan.RemainingBalance.Cents)
	}
	if _, err := l.EditLoan("Car", "Car", core.Cents(29999)); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("total below paid accepted: %v", err)
	}
	if _, err := l.EditLoan("Car", "Car", core.Cents(0)); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("zero total accepted: %v", err)
	}
	if _, err := l.EditLoan("Boat", "Boat", core.Cents(1)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown loan: %v", err)
	}
	if _, err := l.AddLoan("House", core.Cents(1000)); err != nil {
		t.Fatalf("add house: %v", err)
	}
	if _, err := l.EditLoan("Car", "House", core.Cents(50000)); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("rename onto existing loan: %v", err)
	}
	if _, err := l.AddLoan("House", core.Cents(5)); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("duplicate loan: %v", err)
	}
}

func TestDeleteLoanLeavesDanglingPayments(t *testing.T) {
	l := newTestLedger(t)
	tx, err := l.AddTransaction(TransactionInput{Date: "2024-01-01", Amount: core.Cents(500), Target: l.TargetFromLabel("Loan: Car"), Account: "Wallet"})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	n, err := l.DeleteLoan("Car")
	if err != nil || n != 1 {
		t.Fatalf("delete loan: n=%d err=%v", n, err)
	}
	dangling := l.DanglingLoanPayments()
	if len(dangling) != 1 || dangling[0].ID != tx.ID || dangling[0].Target.Label() != "Loan: Car" {
		t.Fatalf("dangling = %+v", dangling)
	}
	if _, err := l.DeleteLoan("Car"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	// Deleting the orphaned payment still refunds the account.
	if _, err := l.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if got := balance(t, l, "Wallet"); got != 10000 {
		t.Fatalf("wallet = %d", got)
	}
}

func TestSelectors(t *testing.T) {
	l := newTestLedger(t)
	got := []string{}
	for _, s := range l.Selectors() {
		got = append(got, s.Label)
	}
	want := []string{"Food", "Loan: Car"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("selectors = %v, want %v", got, want)
	}
}

func TestThemeAndRestore(t *testing.T) {
	l := newTestLedger(t)
	if l.Theme() != core.ThemeLight {
		t.Fatalf("default theme = %q", l.Theme())
	}
	snap := l.Snapshot()
	if got := l.ToggleTheme(); got != core.ThemeDark {
		t.Fatalf("toggle = %q", got)
	}
	if err := l.SetTheme("blue"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("invalid theme accepted: %v", err)
	}
	l.Restore(snap)
	if l.Theme() != core.ThemeLight {
		t.Fatalf("restore did not bring back the theme")
	}
}

func TestAmountsOutsideRangeAreRejected(t *testing.T) {
	const top = core.MaxCents
	var paymentID core.TransactionID

	cases := []struct {
		name  string
		setup func(t *testing.T, l *Ledger)
		op    func(l *Ledger) error
	}{
		{
			name: "opening balance",
			op:   func(l *Ledger) error { return l.AddAccount("Rich", core.Cents(top+1)) },
		},
		{
			name: "add funds",
			setup: func(t *testing.T, l *Ledger) {
				if err := l.AddAccount("Rich", core.Cents(top-1)); err != nil {
					t.Fatal(err)
				}
			},
			op: func(l *Ledger) error { return l.AddFunds("Rich", core.Cents(2)) },
		},
		{
			name: "transfer credit",
			setup: func(t *testing.T, l *Ledger) {
				if err := l.AddAccount("Rich", core.Cents(top)); err != nil {
					t.Fatal(err)
				}
			},
			op: func(l *Ledger) error { return l.TransferFunds("Wallet", "Rich", core.Cents(1)) },
		},
		{
			name: "transaction amount",
			op: func(l *Ledger) error {
				_, err := l.AddTransaction(food("2024-01-05", top+1))
				return err
			},
		},
		{
			name: "transaction debit",
			setup: func(t *testing.T, l *Ledger) {
				if err := l.AddAccount("Broke", core.Cents(-top+1)); err != nil {
					t.Fatal(err)
				}
			},
			op: func(l *Ledger) error {
				in := food("2024-01-05", 2)
				in.Account = "Broke"
				_, err := l.AddTransaction(in)
				return err
			},
		},
		{
			name: "edit transaction",
			setup: func(t *testing.T, l *Ledger) {
				tx, err := l.AddTransaction(food("2024-01-05", 2000))
				if err != nil {
					t.Fatal(err)
				}
				paymentID = tx.ID
				if err := l.AddAccount("Broke", core.Cents(-top)); err != nil {
					t.Fatal(err)
				}
			},
			op: func(l *Ledger) error {
				in := food("2024-01-05", 1)
				in.Account = "Broke"
				_, err := l.EditTransaction(paymentID, in)
				return err
			},
		},
		{
			name: "budget",
			op:   func(l *Ledger) error { return l.SetBudget("Food", core.Cents(top+1)) },
		},
		{
			name: "loan total",
			op: func(l *Ledger) error {
				_, err := l.EditLoan("Car", "Car", core.Cents(top+1))
				return err
			},
		},
		{
			name: "edit overpaid loan",
			setup: func(t *testing.T, l *Ledger) {
				doc := l.Snapshot()
				doc.Loans[0].TotalAmount = core.Cents(top)
				doc.Loans[0].RemainingBalance = core.Cents(-top)
				l.Restore(doc)
			},
			op: func(l *Ledger) error {
				_, err := l.EditLoan("Car", "Car", core.Cents(top))
				return err
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLedger(t)
			if tc.setup != nil {
				tc.setup(t, l)
			}
			before := l.Snapshot()

			err := tc.op(l)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want validation error", err)
			}
			if !reflect.DeepEqual(verr.Problems, []string{amountTooLarge}) {
				t.Fatalf("problems = %v", verr.Problems)
			}
			if !reflect.DeepEqual(l.Snapshot(), before) {
				t.Fatalf("rejected operation changed the ledger")
			}
		})
	}
}
