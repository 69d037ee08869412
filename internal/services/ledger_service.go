package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// Entities named in events and metrics.
const (
	EntityAccount     = "account"
	EntityCategory    = "category"
	EntityBudget      = "budget"
	EntityTransaction = "transaction"
	EntityLoan        = "loan"
	EntityTheme       = "theme"
)

const (
	overviewCacheSize = 32
	overviewCacheTTL  = 10 * time.Minute
)

// Publisher announces committed changes. Implemented by *amqp.Client.
type Publisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService is the single entry point for changing the ledger. Each
// mutation runs under a lock, is saved as a whole document and, once saved,
// is announced to the publisher. A failed save rolls the in-memory state back
// so memory and store never diverge.
type LedgerService struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	store     storage.Store
	publisher Publisher
	engine    *report.Engine
	overviews *cache.LRUCache[core.MonthOverview]
	version   int64
	logger    *log.Logger
}

// NewLedgerService loads the document from store. publisher may be nil.
func NewLedgerService(ctx context.Context, store storage.Store, publisher Publisher, logger *log.Logger, opts ...ledger.Option) (*LedgerService, error) {
	if logger == nil {
		logger = log.Discard()
	}
	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	s := &LedgerService{
		ledger:    ledger.New(doc, opts...),
		store:     store,
		publisher: publisher,
		engine:    report.New(logger),
		overviews: cache.NewLRUCache[core.MonthOverview](overviewCacheSize, overviewCacheTTL),
		logger:    logger.WithComponent(log.ComponentLedger),
	}
	s.recordSize()
	return s, nil
}

// OverviewCache exposes the overview cache so a cache.Manager can sweep it.
func (s *LedgerService) OverviewCache() cache.Cleaner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overviews
}

// ResizeOverviewCache replaces the overview cache with one of the given size
// and ttl. Non-positive values keep the defaults.
func (s *LedgerService) ResizeOverviewCache(size int, ttl time.Duration) {
	if size <= 0 {
		size = overviewCacheSize
	}
	if ttl <= 0 {
		ttl = overviewCacheTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overviews = cache.NewLRUCache[core.MonthOverview](size, ttl)
}

// change describes a mutation for logging, metrics and the published event.
type change struct {
	entity string
	op     string
	key    string
	months []report.Month
}

func (c *change) touch(d core.Date) {
	if !d.Valid() {
		return
	}
	m := report.MonthOf(d.Time)
	for _, seen := range c.months {
		if seen == m {
			return
		}
	}
	c.months = append(c.months, m)
}

// apply runs fn against the ledger and persists the result.
func (s *LedgerService) apply(ctx context.Context, c *change, fn func(l *ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.ledger.Snapshot()
	if err := fn(s.ledger); err != nil {
		if !errors.Is(err, errNoChange) {
			metrics.RecordOperation(c.entity, c.op, err)
		}
		return err
	}

	start := time.Now()
	err := s.store.Save(ctx, s.ledger.Snapshot())
	metrics.ObserveSave(time.Since(start), err)
	if err != nil {
		s.ledger.Restore(snapshot)
		metrics.RecordOperation(c.entity, c.op, err)
		log.LogError(ctx, s.logger, "Failed to save ledger, change rolled back", err, c.op,
			log.NewFields().With("entity", c.entity).With("key", c.key))
		return fmt.Errorf("save ledger: %w", err)
	}

	s.version++
	s.overviews.Purge()
	metrics.RecordOperation(c.entity, c.op, nil)
	s.recordSize()

	s.logger.InfoContext(ctx, "Ledger updated",
		log.FieldOperation, c.op,
		"entity", c.entity,
		"key", c.key,
		log.FieldVersion, s.version)

	s.publish(ctx, c)
	return nil
}

// publish sends one event per affected month, or one undated event. Failures
// are logged and counted; the change is already saved.
func (s *LedgerService) publish(ctx context.Context, c *change) {
	if s.publisher == nil {
		return
	}
	events := make([]*amqp.LedgerEvent, 0, len(c.months)+1)
	if len(c.months) == 0 {
		events = append(events, amqp.NewLedgerEvent(c.op, c.entity, c.key, s.version))
	}
	for _, m := range c.months {
		events = append(events, amqp.NewLedgerEvent(c.op, c.entity, c.key, s.version).ForMonth(m.Year, m.Month))
	}
	for _, ev := range events {
		err := s.publisher.Publish(ctx, ev)
		metrics.RecordPublish(err)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to publish ledger event",
				log.FieldError, err,
				log.FieldOperation, ev.Operation,
				"entity", ev.Entity)
		}
	}
}

func (s *LedgerService) recordSize() {
	doc := s.ledger.Snapshot()
	metrics.SetLedgerSize(len(doc.Accounts), len(doc.Categories), len(doc.Transactions), len(doc.Loans))
}

// Version counts the changes saved since the service started.
func (s *LedgerService) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Close releases the store and, if it holds one, the publisher connection.
func (s *LedgerService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
