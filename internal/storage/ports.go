// Package storage persists the ledger document. Every store saves and loads
// the whole document as one unit.
package storage

import (
	"context"

	"fintrack/internal/core"
)

// DefaultPath is the document file used when no path is configured.
const DefaultPath = "finances_data.json"

// Store loads and saves the complete ledger document.
//
// Load returns the default document when nothing has been saved yet, and an
// empty document when the stored data cannot be decoded. Only I/O failures
// are returned as errors.
type Store interface {
	Load(ctx context.Context) (*core.Document, error)
	Save(ctx context.Context, doc *core.Document) error
	Close() error
}
