// Package filter derives the transaction list shown to the user: type and
// category filters followed by a newest-first ordering.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"budget/internal/core"
)

// All disables a filter.
const All = "all"

// View keeps the transactions matching both filters and orders them by date,
// newest first. Transactions sharing a date keep their ledger order. An empty
// filter value behaves like All. The input slice is never modified.
func View(ledger []core.Transaction, typeFilter, categoryFilter string) []core.Transaction {
	out := make([]core.Transaction, 0, len(ledger))
	for _, tx := range ledger {
		if !matches(typeFilter, tx.Type.String()) || !matches(categoryFilter, tx.Category) {
			continue
		}
		out = append(out, tx)
	}

	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

func matches(filter, value string) bool {
	return filter == "" || filter == All || filter == value
}

// ParseTypeFilter normalizes a type filter coming from user input.
func ParseTypeFilter(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == All {
		return All, nil
	}
	t, err := core.ParseTransactionType(s)
	if err != nil {
		return "", fmt.Errorf("type filter: %w", err)
	}
	return t.String(), nil
}

// ParseCategoryFilter normalizes a category filter coming from user input.
// Unknown categories are accepted and simply match nothing.
func ParseCategoryFilter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return All
	}
	return s
}
