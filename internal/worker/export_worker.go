package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/report"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// ExportWorker turns ledger change events into month reports.
type ExportWorker struct {
	store  storage.Store
	writer sheets.ReportWriter
	engine *report.Engine
	logger *log.Logger
	now    func() time.Time
}

func NewExportWorker(store storage.Store, writer sheets.ReportWriter, logger *log.Logger) *ExportWorker {
	logger = logger.WithComponent(log.ComponentWorker)
	return &ExportWorker{
		store:  store,
		writer: writer,
		engine: report.New(logger),
		logger: logger,
		now:    time.Now,
	}
}

// HandleEvent exports the month named by ev. Events that are not tied to a
// month (accounts, loans, theme) refresh the current month, whose report
// carries balances and debt.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	m := report.MonthOf(w.now())
	if ev.HasMonth() {
		m = report.Month{Year: ev.Year, Month: ev.Month}
	}

	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldOperation, ev.Operation,
		"entity", ev.Entity,
		"key", ev.Key,
		log.FieldVersion, ev.Version,
		log.FieldYear, m.Year,
		log.FieldMonth, m.Month)

	return w.ExportMonth(ctx, m)
}

// ExportMonth reloads the document and writes the report for m.
func (w *ExportWorker) ExportMonth(ctx context.Context, m report.Month) (err error) {
	defer func() { metrics.RecordExport(err) }()

	doc, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	ov := w.engine.Overview(doc, m.Year, m.Month)
	if err := w.writer.WriteMonthReport(ctx, ov); err != nil {
		log.LogError(ctx, w.logger, "Failed to write month report", err, log.OpExport,
			log.NewFields().WithMonth(m.Year, m.Month))
		return fmt.Errorf("write report %s: %w", m, err)
	}

	w.logger.InfoContext(ctx, "Month report exported",
		log.FieldYear, m.Year,
		log.FieldMonth, m.Month,
		"transactions", len(ov.Transactions))
	return nil
}

// ExportCurrentMonth exports the month containing the current time.
func (w *ExportWorker) ExportCurrentMonth(ctx context.Context) error {
	return w.ExportMonth(ctx, report.MonthOf(w.now()))
}
