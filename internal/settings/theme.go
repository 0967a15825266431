// Package settings stores presentation preferences next to the ledger.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budget/internal/storage"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("invalid theme")

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

func (t Theme) String() string { return string(t) }

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Load returns the stored theme. A missing or unreadable value yields Light;
// only storage failures other than a missing key are returned.
func Load(ctx context.Context, st storage.Store) (Theme, error) {
	data, err := st.Get(ctx, storage.KeyTheme)
	if errors.Is(err, storage.ErrNotFound) {
		return Light, nil
	}
	if err != nil {
		return Light, fmt.Errorf("load theme: %w", err)
	}
	t, err := ParseTheme(string(data))
	if err != nil {
		return Light, nil
	}
	return t, nil
}

// Save stores t as a bare string, the same representation the browser used.
func Save(ctx context.Context, st storage.Store, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	if err := st.Set(ctx, storage.KeyTheme, []byte(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Toggle flips the stored theme and returns the new value.
func Toggle(ctx context.Context, st storage.Store) (Theme, error) {
	cur, err := Load(ctx, st)
	if err != nil {
		return "", err
	}
	next := cur.Toggled()
	if err := Save(ctx, st, next); err != nil {
		return "", err
	}
	return next, nil
}
