package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound report adapters.
type (
	// ReportWriter publishes a month overview to an external destination.
	// Writing the same month twice replaces the earlier report.
	ReportWriter interface {
		WriteMonthReport(ctx context.Context, ov core.MonthOverview) error
	}
)
