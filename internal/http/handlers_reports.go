package http

import (
	"net/http"
	"strings"

	"budget/internal/core"
	"budget/internal/filter"
	"budget/internal/report"
)

// handleCategories lists the taxonomy. With ?type= only that type's list is
// returned. The full listing also carries the values accepted by the
// category filter of GET /api/transactions.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("type"))
	if raw == "" {
		NewJSONResponse().Body(map[string]any{
			string(core.Expense): core.Categories(core.Expense),
			string(core.Income):  core.Categories(core.Income),
			"filter":             categoryFilterValues(),
		}).Write(w)
		return
	}

	typ, err := core.ParseTransactionType(raw)
	if err != nil {
		BadRequestError("type must be income or expense").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"type":       typ,
		"categories": core.Categories(typ),
	}).Write(w)
}

// handleOverview returns the monthly totals for the reference month plus the
// balance change against the month before.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseRefDate(r.URL.Query(), s.svc.Today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ov := s.svc.Overview(ref)
	NewJSONResponse().Body(map[string]any{
		"month":    ref.Format("2006-01"),
		"income":   ov.Income.StringFixed(2),
		"expenses": ov.Expenses.StringFixed(2),
		"balance":  ov.Balance.StringFixed(2),
		"change":   changeView(s.svc.Change(ref)),
	}).Write(w)
}

// handleBreakdown returns expense totals by category for a trailing window.
// Unknown period values fall back to month.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref, err := ParseRefDate(q, s.svc.Today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	period := report.ParsePeriod(q.Get("period"))
	start, end := report.PeriodWindow(period, ref)
	slices := s.svc.Breakdown(period, ref)

	type sliceView struct {
		Category string  `json:"category"`
		Label    string  `json:"label"`
		Icon     string  `json:"icon"`
		Total    string  `json:"total"`
		Percent  float64 `json:"percent"`
		Color    string  `json:"color"`
	}
	views := make([]sliceView, 0, len(slices))
	for _, sl := range slices {
		views = append(views, sliceView{
			Category: sl.Category,
			Label:    sl.Label,
			Icon:     sl.Icon,
			Total:    sl.Total.StringFixed(2),
			Percent:  sl.Percent,
			Color:    sl.Color,
		})
	}

	NewJSONResponse().Body(map[string]any{
		"period": period,
		"start":  start.String(),
		"end":    end.String(),
		"slices": views,
	}).Write(w)
}

type changeJSON struct {
	Current  string   `json:"current"`
	Previous string   `json:"previous"`
	Delta    string   `json:"delta"`
	Percent  *float64 `json:"percent"`
}

func changeView(c report.Change) changeJSON {
	return changeJSON{
		Current:  c.Current.StringFixed(2),
		Previous: c.Previous.StringFixed(2),
		Delta:    c.Delta.StringFixed(2),
		Percent:  c.Percent,
	}
}

func categoryFilterValues() []string {
	return append([]string{filter.All}, core.AllCategoryValues()...)
}
