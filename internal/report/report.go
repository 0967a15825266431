// Package report derives the summaries shown next to the ledger: the monthly
// overview, the expense breakdown per category and the month-over-month
// balance change. Every function is pure and works on a ledger snapshot.
package report

import (
	"strings"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Overview holds the income and expense totals of one calendar month.
type Overview struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// MonthlyOverview sums the transactions dated in ref's month and year.
func MonthlyOverview(ledger []core.Transaction, ref core.Date) Overview {
	var o Overview
	for _, tx := range ledger {
		if !tx.Date.SameMonth(ref) {
			continue
		}
		switch tx.Type {
		case core.Income:
			o.Income = o.Income.Add(tx.Amount)
		case core.Expense:
			o.Expenses = o.Expenses.Add(tx.Amount)
		}
	}
	o.Balance = o.Income.Sub(o.Expenses)
	return o
}

// Period selects the breakdown window.
type Period string

const (
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// ParsePeriod maps user input to a Period. Anything unknown is Month.
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Week, Month, Year:
		return p
	default:
		return Month
	}
}

// PeriodWindow returns the inclusive date range covered by p, ending at ref.
// Unknown periods use the Month window.
func PeriodWindow(p Period, ref core.Date) (start, end core.Date) {
	switch p {
	case Week:
		start = ref.AddDays(-7)
	case Year:
		start = ref.FirstOfYear()
	default:
		start = ref.FirstOfMonth()
	}
	return start, ref
}

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Breakdown lists category totals in the order each category was first seen
// in the ledger.
type Breakdown []CategoryTotal

// CategoryBreakdown groups the expenses dated inside p's window by category.
func CategoryBreakdown(ledger []core.Transaction, p Period, ref core.Date) Breakdown {
	start, end := PeriodWindow(p, ref)

	out := Breakdown{}
	index := make(map[string]int)
	for _, tx := range ledger {
		if tx.Type != core.Expense {
			continue
		}
		if tx.Date.Compare(start) < 0 || tx.Date.Compare(end) > 0 {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category})
		}
		out[i].Total = out[i].Total.Add(tx.Amount)
	}
	return out
}

// Total is the sum of every category total.
func (b Breakdown) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range b {
		sum = sum.Add(c.Total)
	}
	return sum
}

// Palette is the colour sequence assigned to breakdown slices.
var Palette = []string{
	"#6366f1", "#10b981", "#ef4444", "#f59e0b",
	"#8b5cf6", "#06b6d4", "#84cc16", "#f97316",
}

// Slice is a breakdown entry ready to be charted.
type Slice struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	Icon     string          `json:"icon"`
	Total    decimal.Decimal `json:"total"`
	Percent  float64         `json:"percent"`
	Color    string          `json:"color"`
}

// Slices resolves category metadata and attaches percentages and colours.
// Colours follow breakdown order and wrap around the palette. A breakdown
// without a positive total yields no slices.
func (b Breakdown) Slices() []Slice {
	out := make([]Slice, 0, len(b))
	total := b.Total()
	if !total.IsPositive() {
		return out
	}
	for i, c := range b {
		cat := core.ResolveCategory(core.Expense, c.Category)
		out = append(out, Slice{
			Category: c.Category,
			Label:    cat.Label,
			Icon:     cat.Icon,
			Total:    c.Total,
			Percent:  PercentageOf(c.Total, total),
			Color:    Palette[i%len(Palette)],
		})
	}
	return out
}

// PercentageOf returns part as a percentage of total. Callers must not pass
// a zero total; a breakdown with at least one entry always has a positive one.
func PercentageOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		panic("report: percentage of a zero total")
	}
	return part.Div(total).Mul(hundred).InexactFloat64()
}

// Change compares the balance of ref's month with the month before it.
type Change struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Delta    decimal.Decimal `json:"delta"`
	// Percent is nil when the previous balance is zero.
	Percent *float64 `json:"percent"`
}

// BalanceChange computes the month-over-month balance change.
func BalanceChange(ledger []core.Transaction, ref core.Date) Change {
	prevRef := ref.FirstOfMonth().AddDays(-1)
	c := Change{
		Current:  MonthlyOverview(ledger, ref).Balance,
		Previous: MonthlyOverview(ledger, prevRef).Balance,
	}
	c.Delta = c.Current.Sub(c.Previous)
	if !c.Previous.IsZero() {
		pct := c.Delta.Div(c.Previous.Abs()).Mul(hundred).InexactFloat64()
		c.Percent = &pct
	}
	return c
}
