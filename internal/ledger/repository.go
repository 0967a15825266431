// Package ledger owns the transaction ledger: it validates submissions,
// applies create/update/delete and writes the full ledger back to storage
// after every mutation.
//
// A Repository is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/storage"
)

// Input is a raw submission as typed by the user.
type Input struct {
	Description string
	Amount      string
	Type        string
	Category    string
	Date        string
}

var errIDExhausted = errors.New("could not allocate a unique id")

type Repository struct {
	store  storage.Store
	items  []core.Transaction // head-first
	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides id assignment.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Repository) { r.logger = l.WithComponent(log.ComponentLedger) }
}

// Open loads the ledger from st. A missing key yields an empty ledger.
func Open(ctx context.Context, st storage.Store, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:  st,
		now:    time.Now,
		newID:  newUUID,
		logger: log.Default(log.ComponentLedger),
	}
	for _, opt := range opts {
		opt(r)
	}

	data, err := st.Get(ctx, storage.KeyTransactions)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		r.logger.InfoContext(ctx, "No stored ledger, starting empty")
		return r, nil
	case err != nil:
		return nil, &PersistenceError{Op: log.OpLoad, Err: err}
	}

	items, err := Decode(data)
	if err != nil {
		return nil, &PersistenceError{Op: log.OpLoad, Err: err}
	}
	r.items = items

	r.logger.InfoContext(ctx, "Ledger loaded", log.FieldLedgerSize, len(items))
	return r, nil
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Today returns the current calendar date, used to prefill submissions.
func (r *Repository) Today() core.Date {
	return core.DateOf(r.now())
}

// All returns a copy of the ledger in insertion order, head-first.
func (r *Repository) All() []core.Transaction {
	return append([]core.Transaction(nil), r.items...)
}

// Get returns the transaction with the given id.
func (r *Repository) Get(id string) (core.Transaction, error) {
	i := r.index(id)
	if i < 0 {
		return core.Transaction{}, &NotFoundError{ID: id}
	}
	return r.items[i], nil
}

// Create validates in and inserts the new transaction at the head of the
// ledger. Nothing changes if validation or persistence fails.
func (r *Repository) Create(ctx context.Context, in Input) (core.Transaction, error) {
	tx, err := parseInput(in)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.ID = r.newID()
	for attempt := 0; r.index(tx.ID) >= 0; attempt++ {
		if attempt == 3 {
			return core.Transaction{}, &PersistenceError{Op: log.OpCreate, Err: errIDExhausted}
		}
		tx.ID = r.newID()
	}
	tx.Timestamp = r.now().UnixMilli()

	prev := r.items
	next := make([]core.Transaction, 0, len(prev)+1)
	next = append(next, tx)
	r.items = append(next, prev...)

	if err := r.persist(ctx, log.OpCreate); err != nil {
		r.items = prev
		return core.Transaction{}, err
	}

	r.logMutation(ctx, log.OpCreate, tx)
	return tx, nil
}

// Update replaces the transaction at id in place, keeping its id and position.
func (r *Repository) Update(ctx context.Context, id string, in Input) (core.Transaction, error) {
	tx, err := parseInput(in)
	if err != nil {
		return core.Transaction{}, err
	}

	i := r.index(id)
	if i < 0 {
		return core.Transaction{}, &NotFoundError{ID: id}
	}

	tx.ID = id
	tx.Timestamp = r.now().UnixMilli()

	old := r.items[i]
	r.items[i] = tx
	if err := r.persist(ctx, log.OpUpdate); err != nil {
		r.items[i] = old
		return core.Transaction{}, err
	}

	r.logMutation(ctx, log.OpUpdate, tx)
	return tx, nil
}

// Delete removes the transaction with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	prev := r.items
	next := make([]core.Transaction, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	r.items = append(next, prev[i+1:]...)

	if err := r.persist(ctx, log.OpDelete); err != nil {
		r.items = prev
		return err
	}

	r.logMutation(ctx, log.OpDelete, prev[i])
	return nil
}

func (r *Repository) index(id string) int {
	for i, tx := range r.items {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole ledger. On failure the caller restores its
// previous in-memory state, so memory never diverges from storage.
func (r *Repository) persist(ctx context.Context, op string) error {
	data, err := Encode(r.items)
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	if err := r.store.Set(ctx, storage.KeyTransactions, data); err != nil {
		fields := log.NewFields().
			WithOperation(op).
			WithError(err, log.ErrorTypePersistence)
		fields[log.FieldStorageKey] = storage.KeyTransactions
		r.logger.ErrorContext(ctx, "Ledger write failed, mutation rolled back", fields.ToSlice()...)
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (r *Repository) logMutation(ctx context.Context, op string, tx core.Transaction) {
	fields := log.NewFields().
		WithOperation(op).
		WithTransaction(tx.ID, tx.Type.String(), tx.Category, tx.Amount.String(), tx.Date.String())
	fields[log.FieldLedgerSize] = len(r.items)
	r.logger.InfoContext(ctx, "Ledger updated", fields.ToSlice()...)
}

// parseInput validates a submission. Presence of every required field is
// checked before any value is parsed, so an empty form reports a missing
// field rather than a malformed one.
func parseInput(in Input) (core.Transaction, error) {
	desc := strings.TrimSpace(in.Description)
	required := []struct{ field, value string }{
		{"description", desc},
		{"amount", strings.TrimSpace(in.Amount)},
		{"category", strings.TrimSpace(in.Category)},
		{"date", strings.TrimSpace(in.Date)},
	}
	for _, f := range required {
		if f.value == "" {
			return core.Transaction{}, &ValidationError{Field: f.field, Err: core.ErrMissingRequired}
		}
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, &ValidationError{Field: "amount", Err: err}
	}
	typ, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, &ValidationError{Field: "type", Err: err}
	}
	category := strings.TrimSpace(in.Category)
	if !core.IsValidCategory(typ, category) {
		return core.Transaction{}, &ValidationError{
			Field: "category",
			Err:   fmt.Errorf("%w: %q is not a %s category", core.ErrInvalidCategory, category, typ),
		}
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, &ValidationError{Field: "date", Err: err}
	}

	return core.Transaction{
		Description: desc,
		Amount:      amount,
		Type:        typ,
		Category:    category,
		Date:        date,
	}, nil
}
