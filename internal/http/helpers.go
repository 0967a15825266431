package http

import (
	"strings"

	"budget/internal/core"
)

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// transactionView is the wire shape of a transaction. Amounts travel as
// fixed two-decimal strings so clients never round through float64.
type transactionView struct {
	ID            string `json:"id"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	CategoryIcon  string `json:"category_icon"`
	Date          string `json:"date"`
	Timestamp     int64  `json:"timestamp"`
}

func toView(tx core.Transaction) transactionView {
	cat := core.ResolveCategory(tx.Type, tx.Category)
	return transactionView{
		ID:            tx.ID,
		Description:   tx.Description,
		Amount:        tx.Amount.StringFixed(2),
		Type:          tx.Type.String(),
		Category:      tx.Category,
		CategoryLabel: cat.Label,
		CategoryIcon:  cat.Icon,
		Date:          tx.Date.String(),
		Timestamp:     tx.Timestamp,
	}
}

func toViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toView(tx))
	}
	return out
}
