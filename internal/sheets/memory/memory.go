package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// Recorder keeps written month reports in memory. It backs the worker when
// no spreadsheet is configured and is used by tests.
type Recorder struct {
	mu      sync.Mutex
	reports map[string]core.MonthOverview
	writes  int
	err     error
}

var _ ports.ReportWriter = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{reports: map[string]core.MonthOverview{}}
}

// FailWith makes every following write return err. A nil err restores
// normal behaviour.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// WriteMonthReport stores ov, replacing an earlier report for the same month.
func (r *Recorder) WriteMonthReport(_ context.Context, ov core.MonthOverview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if ov.Month < 1 || ov.Month > 12 {
		return fmt.Errorf("invalid month: %d", ov.Month)
	}
	r.reports[key(ov.Year, ov.Month)] = ov
	r.writes++
	return nil
}

// Report returns the last report written for year/month.
func (r *Recorder) Report(year, month int) (core.MonthOverview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ov, ok := r.reports[key(year, month)]
	return ov, ok
}

// Writes returns the number of successful writes.
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func key(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
