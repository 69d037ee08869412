package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetBase is the sheet name suffix used when none is configured.
const DefaultSheetBase = "Report"

// Column blocks of a month report sheet. The three blocks never overlap, so
// they can be written independently.
const (
	summaryColumns     = "A:B"
	budgetColumns      = "D:H"
	transactionColumns = "J:O"
)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetBase       string
	CredentialsJSON string
	CredentialsFile string
}

// Client writes month reports into a Google spreadsheet, one sheet per month
// named "<yyyy-mm> <base>".
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	logger = logger.WithComponent(log.ComponentSheets)
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetBase, logger), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetBase string, logger *log.Logger) *Client {
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = DefaultSheetBase
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetBase:     strings.TrimSpace(sheetBase),
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials
// from inline JSON, a file, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		logger.DebugContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		logger.DebugContext(ctx, "Reading service account credentials", "path", credentialsFile)
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	creds, err := googleoauth.CredentialsFromJSON(ctx, credentialsJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	// Token refreshes and API calls share the pooled transport.
	pooledCtx := context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	httpClient := oauth2.NewClient(pooledCtx, creds.TokenSource)

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling, timeouts and keep-alive.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// WriteMonthReport replaces the month's sheet content with ov. The sheet is
// created on first use; the three column blocks are then written concurrently.
func (c *Client) WriteMonthReport(ctx context.Context, ov core.MonthOverview) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if ov.Month < 1 || ov.Month > 12 {
		return fmt.Errorf("invalid month: %d", ov.Month)
	}
	sheet := c.SheetName(ov.Year, ov.Month)

	if err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}
	clearReq := &gsheet.BatchClearValuesRequest{Ranges: []string{
		sheetRange(sheet, summaryColumns),
		sheetRange(sheet, budgetColumns),
		sheetRange(sheet, transactionColumns),
	}}
	if _, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, clearReq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.update(gctx, sheetRange(sheet, "A1"), summaryRows(ov))
	})
	g.Go(func() error {
		return c.update(gctx, sheetRange(sheet, "D1"), budgetRows(ov.Budgets))
	})
	g.Go(func() error {
		return c.update(gctx, sheetRange(sheet, "J1"), transactionRows(ov.Transactions))
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Month report written",
		log.FieldYear, ov.Year,
		log.FieldMonth, ov.Month,
		"sheet", sheet,
		"transactions", len(ov.Transactions))
	return nil
}

// SheetName returns the sheet title used for year/month.
func (c *Client) SheetName(year, month int) string {
	return monthPrefixedName(c.sheetBase, year, month)
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	c.logger.InfoContext(ctx, "Created report sheet", "sheet", title)
	return nil
}

func (c *Client) update(ctx context.Context, rng string, rows [][]interface{}) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	return nil
}

func summaryRows(ov core.MonthOverview) [][]interface{} {
	rows := [][]interface{}{
		{"Month", fmt.Sprintf("%04d-%02d", ov.Year, ov.Month)},
		{"Spent", ov.Total.Units()},
		{"Total balance", ov.TotalBalance.Units()},
		{"Total debt", ov.TotalDebt.Units()},
		{},
		{"Category", "Spent"},
	}
	for _, ca := range ov.ByCategory {
		rows = append(rows, []interface{}{ca.Name, ca.Amount.Units()})
	}
	return rows
}

func budgetRows(lines []core.BudgetLine) [][]interface{} {
	rows := [][]interface{}{{"Budget", "Spent", "Cap", "% used", "Over"}}
	for _, b := range lines {
		rows = append(rows, []interface{}{
			b.Category,
			b.Spent.Units(),
			b.Cap.Units(),
			strconv.FormatFloat(b.PercentUsed, 'f', 1, 64),
			b.Over,
		})
	}
	return rows
}

func transactionRows(txs []core.Transaction) [][]interface{} {
	rows := [][]interface{}{{"Date", "Description", "Amount", "Category", "Account", "ID"}}
	for _, t := range txs {
		rows = append(rows, []interface{}{
			t.Date.String(),
			t.Description,
			t.Amount.Units(),
			t.Target.Label(),
			t.AccountName,
			string(t.ID),
		})
	}
	return rows
}

func sheetRange(sheet, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), cells)
}

// monthPrefixedName returns "<yyyy-mm> <base>".
func monthPrefixedName(base string, year, month int) string {
	return strings.TrimSpace(fmt.Sprintf("%04d-%02d %s", year, month, strings.TrimSpace(base)))
}
