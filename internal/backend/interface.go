package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the document store, the optional event client and
// a cleanup function releasing both.
type BackendResult struct {
	Store   storage.Store
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns the event client as a services.Publisher, or nil when
// events are disabled.
func (r *BackendResult) Publisher() services.Publisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the document store selected by config.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateReportWriter returns the destination for month reports.
	CreateReportWriter(ctx context.Context, config Config) (sheets.ReportWriter, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// JSON file specific
	DataPath string

	// SQLite specific
	SQLitePath string

	// Events; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Report export; in-memory when GoogleSpreadsheetID is empty
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
