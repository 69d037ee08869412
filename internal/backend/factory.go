package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend. A broker that cannot be
// reached disables events instead of failing startup.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	var events *amqp.Client
	if config.AMQPURL != "" {
		events, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			events = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldStore, config.Type.String(),
		"events_enabled", events != nil)

	return &BackendResult{
		Store:  store,
		Events: events,
		Cleanup: func() error {
			var errs []error
			if events != nil {
				errs = append(errs, events.Close())
			}
			errs = append(errs, store.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createStore(config Config) (storage.Store, error) {
	switch config.Type {
	case JSONBackend:
		return storage.NewFileStore(config.DataPath, f.logger), nil
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(config.SQLitePath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		return store, nil
	case MemoryBackend:
		return storage.NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreateReportWriter implements Factory.CreateReportWriter. Without a
// spreadsheet the reports are only kept in memory.
func (f *DefaultFactory) CreateReportWriter(ctx context.Context, config Config) (sheets.ReportWriter, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.InfoContext(ctx, "No spreadsheet configured, keeping reports in memory")
		return memory.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetBase:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	return client, nil
}
