package filter

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

func tx(id string, typ core.TransactionType, cat string, y, m, d int) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: id,
		Amount:      decimal.NewFromInt(10),
		Type:        typ,
		Category:    cat,
		Date:        core.NewDate(y, m, d),
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sampleLedger() []core.Transaction {
	// Head-first ledger order.
	return []core.Transaction{
		tx("paycheck", core.Income, "salario", 2024, 3, 5),
		tx("rent", core.Expense, "moradia", 2024, 3, 1),
		tx("lunch", core.Expense, "alimentacao", 2024, 3, 5),
		tx("bonus", core.Income, "outros", 2024, 2, 20),
		tx("misc", core.Expense, "outros", 2024, 3, 10),
	}
}

func TestViewFilters(t *testing.T) {
	ledger := sampleLedger()
	cases := []struct {
		name     string
		typ, cat string
		want     []string
	}{
		{"all", "all", "all", []string{"misc", "paycheck", "lunch", "rent", "bonus"}},
		{"empty filters mean all", "", "", []string{"misc", "paycheck", "lunch", "rent", "bonus"}},
		{"expense only", "expense", "all", []string{"misc", "lunch", "rent"}},
		{"income only", "income", "all", []string{"paycheck", "bonus"}},
		{"category across types", "all", "outros", []string{"misc", "bonus"}},
		{"type and category", "income", "outros", []string{"bonus"}},
		{"no match", "income", "moradia", []string{}},
		{"unknown category", "all", "nope", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := View(ledger, tc.typ, tc.cat)
			if got == nil {
				t.Fatalf("empty result must be a non-nil slice")
			}
			if !equal(ids(got), tc.want) {
				t.Fatalf("got %v, want %v", ids(got), tc.want)
			}
		})
	}
}

func TestViewStableOnEqualDates(t *testing.T) {
	// paycheck precedes lunch in the ledger and both share 2024-03-05.
	got := ids(View(sampleLedger(), All, All))
	pi, li := -1, -1
	for i, id := range got {
		switch id {
		case "paycheck":
			pi = i
		case "lunch":
			li = i
		}
	}
	if pi < 0 || li < 0 || pi > li {
		t.Fatalf("equal dates must keep ledger order: %v", got)
	}
}

func TestViewDoesNotMutateInput(t *testing.T) {
	ledger := sampleLedger()
	before := ids(ledger)
	_ = View(ledger, All, All)
	if !equal(before, ids(ledger)) {
		t.Fatalf("input reordered: %v", ids(ledger))
	}
}

func TestViewSpecExample(t *testing.T) {
	ledger := []core.Transaction{
		tx("rent", core.Expense, "moradia", 2024, 3, 1),
		tx("paycheck", core.Income, "salario", 2024, 3, 5),
	}
	got := View(ledger, "expense", "all")
	if len(got) != 1 || got[0].ID != "rent" {
		t.Fatalf("expected only rent, got %v", ids(got))
	}
}

func TestParseTypeFilter(t *testing.T) {
	for in, want := range map[string]string{"": All, "ALL": All, "income": "income", " Expense ": "expense"} {
		got, err := ParseTypeFilter(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q err=%v", in, got, err)
		}
	}
	if _, err := ParseTypeFilter("savings"); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if ParseCategoryFilter(" ") != All || ParseCategoryFilter("lazer") != "lazer" {
		t.Fatalf("unexpected category filter normalization")
	}
}
