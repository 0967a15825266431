package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// record is the persisted shape of a transaction. Amount is written as a
// bare JSON number.
type record struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Timestamp   int64       `json:"timestamp"`
}

// Encode serializes the ledger as a JSON array, preserving order.
func Encode(txs []core.Transaction) ([]byte, error) {
	recs := make([]record, len(txs))
	for i, tx := range txs {
		recs[i] = record{
			ID:          tx.ID,
			Description: tx.Description,
			Amount:      json.Number(tx.Amount.String()),
			Type:        tx.Type.String(),
			Category:    tx.Category,
			Date:        tx.Date.String(),
			Timestamp:   tx.Timestamp,
		}
	}
	return json.Marshal(recs)
}

// Decode parses a persisted ledger. Every record must satisfy
// core.Transaction.Validate; categories are not checked against the taxonomy
// so that records referencing retired categories still load.
func Decode(data []byte) ([]core.Transaction, error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}

	txs := make([]core.Transaction, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: empty id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}

		amount, err := decimal.NewFromString(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("record %s: amount %q: %w", r.ID, r.Amount, err)
		}
		typ, err := core.ParseTransactionType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		date, err := core.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}

		tx := core.Transaction{
			ID:          r.ID,
			Description: r.Description,
			Amount:      amount,
			Type:        typ,
			Category:    r.Category,
			Date:        date,
			Timestamp:   r.Timestamp,
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
