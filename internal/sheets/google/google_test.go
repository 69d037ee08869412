package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets is a minimal stand-in for the Sheets REST API.
type fakeSheets struct {
	mu        sync.Mutex
	titles    []string
	added     []string
	cleared   []string
	updates   map[string][][]interface{}
	failWrite string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/v4/spreadsheets/sid"):
		var sheets []map[string]any
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sid", "sheets": sheets})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.Unmarshal(body, &req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "values:batchClear"):
		var req gsheet.BatchClearValuesRequest
		_ = json.Unmarshal(body, &req)
		f.cleared = append(f.cleared, req.Ranges...)
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		if f.failWrite != "" && strings.HasSuffix(rng, f.failWrite) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"bad range"}}`)
			return
		}
		var vr gsheet.ValueRange
		_ = json.Unmarshal(body, &vr)
		f.updates[rng] = vr.Values
		_, _ = io.WriteString(w, `{}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"not found"}}`)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	fake.updates = map[string][][]interface{}{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, "sid", "", log.Discard())
}

func sampleOverview() core.MonthOverview {
	return core.MonthOverview{
		Year:       2024,
		Month:      3,
		Total:      core.Cents(8050),
		ByCategory: []core.CategoryAmount{{Name: "Food", Amount: core.Cents(8050)}},
		Budgets: []core.BudgetLine{
			{Category: "Food", Spent: core.Cents(8050), Cap: core.Cents(50000), PercentUsed: 16.1},
		},
		TotalBalance: core.Cents(91950),
		Transactions: []core.Transaction{{
			ID:          "t1",
			Date:        core.NewDate(2024, 3, 10),
			Description: "groceries",
			Amount:      core.Cents(8050),
			Target:      core.CategoryTarget("Food"),
			AccountName: "Wallet",
		}},
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, log.Discard())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sid"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_InvalidCredentialsJSON(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sid", CredentialsJSON: "not-json"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "parse service account credentials") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSheetName(t *testing.T) {
	c := NewWithService(nil, "sid", "", log.Discard())
	if got := c.SheetName(2024, 3); got != "2024-03 Report" {
		t.Errorf("SheetName = %q", got)
	}
	c = NewWithService(nil, "sid", " Budget ", log.Discard())
	if got := c.SheetName(2025, 11); got != "2025-11 Budget" {
		t.Errorf("SheetName = %q", got)
	}
}

func TestWriteMonthReport_NilService(t *testing.T) {
	c := NewWithService(nil, "sid", "", log.Discard())
	if err := c.WriteMonthReport(context.Background(), sampleOverview()); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestWriteMonthReport_InvalidMonth(t *testing.T) {
	c := newTestClient(t, &fakeSheets{})
	ov := sampleOverview()
	ov.Month = 13
	if err := c.WriteMonthReport(context.Background(), ov); err == nil {
		t.Fatal("expected invalid month error")
	}
}

func TestWriteMonthReport_CreatesSheetAndWritesBlocks(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	if err := c.WriteMonthReport(context.Background(), sampleOverview()); err != nil {
		t.Fatalf("WriteMonthReport: %v", err)
	}

	if len(fake.added) != 1 || fake.added[0] != "2024-03 Report" {
		t.Fatalf("added sheets = %v", fake.added)
	}
	if len(fake.cleared) != 3 {
		t.Fatalf("cleared ranges = %v", fake.cleared)
	}
	if len(fake.updates) != 3 {
		t.Fatalf("expected 3 range writes, got %d: %v", len(fake.updates), fake.updates)
	}

	var tx [][]interface{}
	for rng, rows := range fake.updates {
		if strings.HasSuffix(rng, "!J1") {
			tx = rows
		}
	}
	if len(tx) != 2 {
		t.Fatalf("transaction rows = %v", tx)
	}
	if tx[1][0] != "2024-03-10" || tx[1][3] != "Food" || tx[1][5] != "t1" {
		t.Errorf("unexpected transaction row: %v", tx[1])
	}

	// A second write reuses the sheet.
	if err := c.WriteMonthReport(context.Background(), sampleOverview()); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if len(fake.added) != 1 {
		t.Errorf("sheet added twice: %v", fake.added)
	}
}

func TestWriteMonthReport_WriteFailure(t *testing.T) {
	fake := &fakeSheets{titles: []string{"2024-03 Report"}, failWrite: "!D1"}
	c := newTestClient(t, fake)
	err := c.WriteMonthReport(context.Background(), sampleOverview())
	if err == nil || !strings.Contains(err.Error(), "write") {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestRows(t *testing.T) {
	ov := sampleOverview()
	sum := summaryRows(ov)
	if sum[0][1] != "2024-03" || sum[1][1] != 80.5 {
		t.Errorf("summary rows = %v", sum[:2])
	}
	if len(sum) != 7 {
		t.Errorf("expected 6 header rows + 1 category, got %d", len(sum))
	}

	b := budgetRows(ov.Budgets)
	if len(b) != 2 || b[1][3] != "16.1" || b[1][4] != false {
		t.Errorf("budget rows = %v", b)
	}

	if rows := transactionRows(nil); len(rows) != 1 {
		t.Errorf("expected header only, got %v", rows)
	}
}
