package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"budget/internal/amqp"
	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/filter"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/report"
	"budget/internal/settings"
	"budget/internal/storage"
)

// Publisher receives change events after a mutation has been persisted.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 5 * time.Minute
)

// LedgerService makes a ledger.Repository usable from concurrent callers. It
// serializes every repository call, caches report results until the next
// mutation and publishes change events.
type LedgerService struct {
	mu    sync.Mutex
	repo  *ledger.Repository
	store storage.Store

	publisher Publisher
	logger    *log.Logger

	cacheTTL   time.Duration
	manager    *cache.Manager
	overviews  *cache.LRUCache[report.Overview]
	breakdowns *cache.LRUCache[[]report.Slice]
	changes    *cache.LRUCache[report.Change]
}

type ServiceOption func(*LedgerService)

// WithPublisher enables change events. Without one, events are skipped.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *LedgerService) { s.publisher = p }
}

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *LedgerService) { s.cacheTTL = ttl }
}

// WithCacheManager registers the report caches for periodic expiry.
func WithCacheManager(m *cache.Manager) ServiceOption {
	return func(s *LedgerService) { s.manager = m }
}

func WithServiceLogger(l *log.Logger) ServiceOption {
	return func(s *LedgerService) { s.logger = l.WithComponent(log.ComponentService) }
}

// NewLedgerService wraps repo. store must be the store repo was opened on;
// the service also keeps the theme preference in it.
func NewLedgerService(repo *ledger.Repository, store storage.Store, opts ...ServiceOption) *LedgerService {
	s := &LedgerService{
		repo:     repo,
		store:    store,
		logger:   log.Default(log.ComponentService),
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.overviews = cache.NewLRUCache[report.Overview](defaultCacheSize, s.cacheTTL)
	s.breakdowns = cache.NewLRUCache[[]report.Slice](defaultCacheSize, s.cacheTTL)
	s.changes = cache.NewLRUCache[report.Change](defaultCacheSize, s.cacheTTL)
	if s.manager != nil {
		s.manager.Register(s.overviews)
		s.manager.Register(s.breakdowns)
		s.manager.Register(s.changes)
	}
	return s
}

// Create adds a transaction and publishes a created event.
func (s *LedgerService) Create(ctx context.Context, in ledger.Input) (core.Transaction, error) {
	s.mu.Lock()
	tx, err := s.repo.Create(ctx, in)
	if err == nil {
		s.invalidate()
	}
	s.mu.Unlock()
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.ActionCreated, tx)
	return tx, nil
}

// Update replaces the transaction with the given id.
func (s *LedgerService) Update(ctx context.Context, id string, in ledger.Input) (core.Transaction, error) {
	s.mu.Lock()
	tx, err := s.repo.Update(ctx, id, in)
	if err == nil {
		s.invalidate()
	}
	s.mu.Unlock()
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.ActionUpdated, tx)
	return tx, nil
}

// Delete removes the transaction with the given id.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	tx, err := s.repo.Get(id)
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}
	if err == nil {
		s.invalidate()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(ctx, amqp.ActionDeleted, tx)
	return nil
}

func (s *LedgerService) Get(id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Get(id)
}

// All returns the ledger in insertion order.
func (s *LedgerService) All() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.All()
}

// List returns the filtered, date-ordered view of the ledger.
func (s *LedgerService) List(typeFilter, categoryFilter string) []core.Transaction {
	return filter.View(s.All(), typeFilter, categoryFilter)
}

// Today is the date used when a caller does not pick one.
func (s *LedgerService) Today() core.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Today()
}

// Overview returns the totals of ref's month.
func (s *LedgerService) Overview(ref core.Date) report.Overview {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ref.Format("2006-01")
	if o, ok := s.overviews.Get(key); ok {
		return o
	}
	o := report.MonthlyOverview(s.repo.All(), ref)
	s.overviews.Set(key, o)
	return o
}

// Breakdown returns the chart slices for period ending at ref. The result is
// the caller's to modify.
func (s *LedgerService) Breakdown(period report.Period, ref core.Date) []report.Slice {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := string(period) + ":" + ref.String()
	if b, ok := s.breakdowns.Get(key); ok {
		return slices.Clone(b)
	}
	b := report.CategoryBreakdown(s.repo.All(), period, ref).Slices()
	s.breakdowns.Set(key, b)
	return slices.Clone(b)
}

// Change returns the month-over-month balance change for ref's month.
func (s *LedgerService) Change(ref core.Date) report.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ref.Format("2006-01")
	if c, ok := s.changes.Get(key); ok {
		return c
	}
	c := report.BalanceChange(s.repo.All(), ref)
	s.changes.Set(key, c)
	return c
}

func (s *LedgerService) Theme(ctx context.Context) (settings.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return settings.Load(ctx, s.store)
}

func (s *LedgerService) SetTheme(ctx context.Context, t settings.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return settings.Save(ctx, s.store, t)
}

func (s *LedgerService) ToggleTheme(ctx context.Context) (settings.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return settings.Toggle(ctx, s.store)
}

// Ping checks that the backing store answers.
func (s *LedgerService) Ping(ctx context.Context) error {
	_, err := s.store.Get(ctx, storage.KeyTransactions)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// invalidate must be called with s.mu held. Reports are computed under the
// same lock, so a cleared cache is never refilled from an older snapshot.
func (s *LedgerService) invalidate() {
	s.overviews.Clear()
	s.breakdowns.Clear()
	s.changes.Clear()
}

// publish never fails the caller: the mutation is already durable.
func (s *LedgerService) publish(ctx context.Context, action amqp.Action, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(action, tx)); err != nil {
		fields := log.NewFields().
			WithOperation(log.OpPublish).
			WithError(err, log.ErrorTypeNetwork)
		fields[log.FieldTxID] = tx.ID
		fields[log.FieldEventAction] = string(action)
		s.logger.WarnContext(ctx, "Failed to publish ledger event", fields.ToSlice()...)
	}
}

// Close releases the store and the publisher, if it holds a connection.
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

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
