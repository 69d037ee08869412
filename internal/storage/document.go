package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// legacyNamespace seeds the deterministic ids given to records saved before
// ids were persisted.
var legacyNamespace = uuid.MustParse("8f1d6c52-64a4-4b0c-9d3e-5b7f0a2c1e90")

// fileDocument is the on-disk JSON shape. Field order fixes key order.
type fileDocument struct {
	Accounts     []core.Account        `json:"accounts"`
	Categories   []string              `json:"categories"`
	Budgets      map[string]core.Money `json:"budgets"`
	Transactions []core.Transaction    `json:"transactions"`
	Loans        []core.Loan           `json:"loans"`
	Theme        core.Theme            `json:"theme"`
}

// rawDocument is the decoding side; optional keys are pointers so older files
// can be told apart from empty collections.
type rawDocument struct {
	Accounts     []core.Account        `json:"accounts"`
	Categories   []string              `json:"categories"`
	Budgets      map[string]core.Money `json:"budgets"`
	Transactions []rawTransaction      `json:"transactions"`
	Loans        *[]rawLoan            `json:"loans"`
	Theme        *core.Theme           `json:"theme"`
}

type rawTransaction struct {
	ID          json.RawMessage `json:"id"`
	Date        core.Date       `json:"date"`
	Description string          `json:"description"`
	Amount      core.Money      `json:"amount"`
	Category    string          `json:"category"`
	AccountName string          `json:"account_name"`
	LoanID      string          `json:"loan_id"`
}

type rawLoan struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	TotalAmount      core.Money `json:"total_amount"`
	RemainingBalance core.Money `json:"remaining_balance"`
}

// storedTransaction is a transaction as every backend stores it: the target
// is only a label plus an optional loan id.
type storedTransaction struct {
	ID          string
	Date        core.Date
	Description string
	Amount      core.Money
	Category    string
	AccountName string
	LoanID      string
}

// EncodeDocument renders doc as indented JSON. Equal documents encode to
// identical bytes.
func EncodeDocument(doc *core.Document) ([]byte, error) {
	fd := fileDocument{
		Accounts:     doc.Accounts,
		Categories:   doc.Categories,
		Budgets:      doc.Budgets,
		Transactions: doc.Transactions,
		Loans:        doc.Loans,
		Theme:        doc.Theme,
	}
	if fd.Accounts == nil {
		fd.Accounts = []core.Account{}
	}
	if fd.Categories == nil {
		fd.Categories = []string{}
	}
	if fd.Budgets == nil {
		fd.Budgets = map[string]core.Money{}
	}
	if fd.Transactions == nil {
		fd.Transactions = []core.Transaction{}
	}
	if fd.Loans == nil {
		fd.Loans = []core.Loan{}
	}
	if !fd.Theme.Valid() {
		fd.Theme = core.ThemeLight
	}
	data, err := json.MarshalIndent(fd, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeDocument parses a stored document, upgrading older layouts: missing
// loans and theme get defaults, records without ids get deterministic ones
// and loan payments saved as a bare "Loan: X" category are linked by name.
// Repeated account, category and loan names keep their first occurrence.
func DecodeDocument(data []byte) (*core.Document, error) {
	doc, _, err := decodeDocument(data)
	return doc, err
}

// decodeDocument is DecodeDocument that also reports the dropped duplicates.
func decodeDocument(data []byte) (*core.Document, []string, error) {
	var raw rawDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode document: %w", err)
	}

	doc := core.EmptyDocument()
	if raw.Accounts != nil {
		doc.Accounts = raw.Accounts
	}
	if raw.Categories != nil {
		doc.Categories = raw.Categories
	}
	if raw.Budgets != nil {
		doc.Budgets = raw.Budgets
	}
	if raw.Theme != nil && raw.Theme.Valid() {
		doc.Theme = *raw.Theme
	}

	var loans []rawLoan
	if raw.Loans != nil {
		loans = *raw.Loans
	}
	doc.Loans = buildLoans(loans)
	dropped := dropDuplicateNames(doc)

	stored := make([]storedTransaction, 0, len(raw.Transactions))
	for _, rt := range raw.Transactions {
		id, err := rawID(rt.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("decode transaction id: %w", err)
		}
		stored = append(stored, storedTransaction{
			ID:          id,
			Date:        rt.Date,
			Description: rt.Description,
			Amount:      rt.Amount,
			Category:    rt.Category,
			AccountName: rt.AccountName,
			LoanID:      rt.LoanID,
		})
	}
	doc.Transactions = buildTransactions(stored, doc.Loans)
	return doc, dropped, nil
}

// dropDuplicateNames keeps the first account, category and loan of each name
// and returns a "kind name" entry for every record it removed. Transactions
// that pointed at a removed loan keep its label and show up as dangling.
func dropDuplicateNames(doc *core.Document) []string {
	var dropped []string

	accounts := doc.Accounts[:0]
	seen := make(map[string]bool, len(doc.Accounts))
	for _, a := range doc.Accounts {
		if seen[a.Name] {
			dropped = append(dropped, "account "+a.Name)
			continue
		}
		seen[a.Name] = true
		accounts = append(accounts, a)
	}
	doc.Accounts = accounts

	categories := doc.Categories[:0]
	seen = make(map[string]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		if seen[c] {
			dropped = append(dropped, "category "+c)
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	doc.Categories = categories

	loans := doc.Loans[:0]
	seen = make(map[string]bool, len(doc.Loans))
	for _, l := range doc.Loans {
		if seen[l.Name] {
			dropped = append(dropped, "loan "+l.Name)
			continue
		}
		seen[l.Name] = true
		loans = append(loans, l)
	}
	doc.Loans = loans

	return dropped
}

// rawID turns a stored id into text. Numeric ids keep their literal form.
func rawID(msg json.RawMessage) (string, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return "", nil
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// buildLoans assigns ids to loans that lack one and resolves id clashes.
func buildLoans(raw []rawLoan) []core.Loan {
	out := make([]core.Loan, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, rl := range raw {
		id := strings.TrimSpace(rl.ID)
		if id == "" {
			id = uuid.NewSHA1(legacyNamespace, []byte("loan|"+rl.Name)).String()
		}
		for n := 1; seen[id]; n++ {
			id = uuid.NewSHA1(legacyNamespace, []byte(fmt.Sprintf("loan|%s|%d", rl.Name, n))).String()
		}
		seen[id] = true
		out = append(out, core.Loan{
			ID:               core.LoanID(id),
			Name:             rl.Name,
			TotalAmount:      rl.TotalAmount,
			RemainingBalance: rl.RemainingBalance,
		})
	}
	return out
}

// buildTransactions resolves targets against loans and fills in missing or
// clashing ids. Ids derived from date and amount are disambiguated by how
// often that pair occurred before.
func buildTransactions(stored []storedTransaction, loans []core.Loan) []core.Transaction {
	byID := make(map[core.LoanID]core.Loan, len(loans))
	byName := make(map[string]core.Loan, len(loans))
	for _, l := range loans {
		byID[l.ID] = l
		if _, dup := byName[l.Name]; !dup {
			byName[l.Name] = l
		}
	}

	out := make([]core.Transaction, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	occurrences := make(map[string]int)
	for _, st := range stored {
		id := st.ID
		if id == "" || seen[id] {
			key := fmt.Sprintf("%s|%d|%s", st.Date.String(), st.Amount.Cents, id)
			for {
				occurrences[key]++
				id = uuid.NewSHA1(legacyNamespace, []byte(fmt.Sprintf("%s|%d", key, occurrences[key]))).String()
				if !seen[id] {
					break
				}
			}
		}
		seen[id] = true

		desc := st.Description
		if strings.TrimSpace(desc) == "" {
			desc = core.DefaultDescription
		}
		out = append(out, core.Transaction{
			ID:          core.TransactionID(id),
			Date:        st.Date,
			Description: desc,
			Amount:      st.Amount,
			Target:      resolveTarget(st, byID, byName),
			AccountName: st.AccountName,
		})
	}
	return out
}

func resolveTarget(st storedTransaction, byID map[core.LoanID]core.Loan, byName map[string]core.Loan) core.Target {
	name, isLoanLabel := core.IsLoanLabel(st.Category)
	if st.LoanID != "" {
		if l, ok := byID[core.LoanID(st.LoanID)]; ok {
			return core.LoanTarget(l)
		}
		if !isLoanLabel {
			name = st.Category
		}
		return core.Target{Kind: core.TargetLoan, LoanID: core.LoanID(st.LoanID), LoanName: name}
	}
	if isLoanLabel {
		if l, ok := byName[name]; ok {
			return core.LoanTarget(l)
		}
		return core.Target{Kind: core.TargetLoan, LoanName: name}
	}
	return core.CategoryTarget(st.Category)
}
