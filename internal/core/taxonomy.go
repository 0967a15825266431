package core

// Category is a static taxonomy entry. Icon is an opaque identifier meaningful
// only to the rendering layer.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

const (
	fallbackLabel = "Outros"
	fallbackIcon  = "fas fa-ellipsis-h"
)

var taxonomy = map[TransactionType][]Category{
	Expense: {
		{Value: "alimentacao", Label: "Alimentação", Icon: "fas fa-utensils"},
		{Value: "transporte", Label: "Transporte", Icon: "fas fa-car"},
		{Value: "moradia", Label: "Moradia", Icon: "fas fa-home"},
		{Value: "lazer", Label: "Lazer", Icon: "fas fa-gamepad"},
		{Value: "saude", Label: "Saúde", Icon: "fas fa-heartbeat"},
		{Value: "educacao", Label: "Educação", Icon: "fas fa-graduation-cap"},
		{Value: "outros", Label: "Outros", Icon: "fas fa-ellipsis-h"},
	},
	Income: {
		{Value: "salario", Label: "Salário", Icon: "fas fa-briefcase"},
		{Value: "freelance", Label: "Freelance", Icon: "fas fa-laptop"},
		{Value: "investimentos", Label: "Investimentos", Icon: "fas fa-chart-line"},
		{Value: "outros", Label: "Outros", Icon: "fas fa-ellipsis-h"},
	},
}

// Categories returns the ordered category list for t. Unknown types yield nil.
func Categories(t TransactionType) []Category {
	return append([]Category(nil), taxonomy[t]...)
}

// ResolveCategory looks up (t, value). Values missing from the list for t,
// such as legacy data referencing a removed category, resolve to the generic
// "Outros" entry instead of failing.
func ResolveCategory(t TransactionType, value string) Category {
	for _, c := range taxonomy[t] {
		if c.Value == value {
			return c
		}
	}
	return Category{Value: value, Label: fallbackLabel, Icon: fallbackIcon}
}

// IsValidCategory reports whether value belongs to the list for t. The other
// type's list is never consulted.
func IsValidCategory(t TransactionType, value string) bool {
	for _, c := range taxonomy[t] {
		if c.Value == value {
			return true
		}
	}
	return false
}

// AllCategoryValues returns every distinct category value, expense first.
func AllCategoryValues() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range []TransactionType{Expense, Income} {
		for _, c := range taxonomy[t] {
			if _, ok := seen[c.Value]; ok {
				continue
			}
			seen[c.Value] = struct{}{}
			out = append(out, c.Value)
		}
	}
	return out
}
