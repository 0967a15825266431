// Package storage provides key-value persistence backends for the ledger and
// user preferences. Every backend stores opaque byte values under string keys
// and replaces a key's value in full on each write.
package storage

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyTransactions = "budgetPlannerTransactions"
	KeyTheme        = "theme"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is a synchronous key-value store.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set durably replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
