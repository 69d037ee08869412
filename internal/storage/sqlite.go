package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

const settingTheme = "theme"

// SQLiteStore keeps the document in normalized SQLite tables. Row position
// preserves the insertion order of every collection.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and runs
// pending migrations.
func NewSQLiteStore(dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads every table. A database that was never saved to yields the
// default document.
func (s *SQLiteStore) Load(ctx context.Context) (*core.Document, error) {
	var theme string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingTheme).Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.InfoContext(ctx, "Empty database, starting with defaults", "path", s.path)
		return core.DefaultDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}

	doc := core.EmptyDocument()
	if t := core.Theme(theme); t.Valid() {
		doc.Theme = t
	}

	if doc.Accounts, err = s.loadAccounts(ctx); err != nil {
		return nil, err
	}
	if doc.Categories, err = s.loadCategories(ctx); err != nil {
		return nil, err
	}
	if doc.Budgets, err = s.loadBudgets(ctx); err != nil {
		return nil, err
	}
	raw, err := s.loadLoans(ctx)
	if err != nil {
		return nil, err
	}
	doc.Loans = buildLoans(raw)
	if dropped := dropDuplicateNames(doc); len(dropped) > 0 {
		s.logger.WarnContext(ctx, "Dropped records with duplicate names",
			"path", s.path,
			"dropped", dropped)
	}
	stored, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	doc.Transactions = buildTransactions(stored, doc.Loans)
	return doc, nil
}

func (s *SQLiteStore) loadAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, balance_cents FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	out := []core.Account{}
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.Name, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadBudgets(ctx context.Context) (map[string]core.Money, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, cap_cents FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := map[string]core.Money{}
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out[category] = core.Cents(cents)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadLoans(ctx context.Context) ([]rawLoan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, total_cents, remaining_cents FROM loans ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var out []rawLoan
	for rows.Next() {
		var l rawLoan
		if err := rows.Scan(&l.ID, &l.Name, &l.TotalAmount.Cents, &l.RemainingBalance.Cents); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]storedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount_cents, category, account_name, loan_id
		FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []storedTransaction
	for rows.Next() {
		var (
			st     storedTransaction
			date   string
			loanID sql.NullString
		)
		if err := rows.Scan(&st.ID, &date, &st.Description, &st.Amount.Cents, &st.Category, &st.AccountName, &loanID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		st.Date = core.ParseStoredDate(date)
		st.LoanID = loanID.String
		out = append(out, st)
	}
	return out, rows.Err()
}

// Save replaces every row inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, doc *core.Document) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"accounts", "categories", "budgets", "loans", "transactions", "settings"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, a := range doc.Accounts {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO accounts (position, name, balance_cents) VALUES (?, ?, ?)`,
			i, a.Name, a.Balance.Cents); err != nil {
			return fmt.Errorf("insert account %q: %w", a.Name, err)
		}
	}
	for i, c := range doc.Categories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO categories (position, name) VALUES (?, ?)`, i, c); err != nil {
			return fmt.Errorf("insert category %q: %w", c, err)
		}
	}
	for c, m := range doc.Budgets {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO budgets (category, cap_cents) VALUES (?, ?)`, c, m.Cents); err != nil {
			return fmt.Errorf("insert budget %q: %w", c, err)
		}
	}
	for i, l := range doc.Loans {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO loans (position, id, name, total_cents, remaining_cents) VALUES (?, ?, ?, ?, ?)`,
			i, string(l.ID), l.Name, l.TotalAmount.Cents, l.RemainingBalance.Cents); err != nil {
			return fmt.Errorf("insert loan %q: %w", l.Name, err)
		}
	}
	for i, t := range doc.Transactions {
		var loanID sql.NullString
		if t.Target.IsLoan() && t.Target.LoanID != "" {
			loanID = sql.NullString{String: string(t.Target.LoanID), Valid: true}
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (position, id, date, description, amount_cents, category, account_name, loan_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, string(t.ID), t.Date.String(), t.Description, t.Amount.Cents, t.Target.Label(), t.AccountName, loanID); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	theme := doc.Theme
	if !theme.Valid() {
		theme = core.ThemeLight
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)`, settingTheme, string(theme)); err != nil {
		return fmt.Errorf("insert theme: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.DebugContext(ctx, "Document saved",
		"path", s.path,
		"transactions", len(doc.Transactions))
	return nil
}
