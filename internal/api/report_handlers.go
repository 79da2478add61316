package api

import (
	"net/http"
	"time"

	"pdv/m/internal/apperr"
	"pdv/m/internal/sales"
)

// dailySales summarises the UTC day given as ?date=YYYY-MM-DD, today when
// omitted.
func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	day, err := h.reportTime(r, "date", "2006-01-02")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	from, to := sales.DayRange(day)
	h.respondSummary(w, r, from, to)
}

// monthlySales summarises the UTC month given as ?month=YYYY-MM.
func (h *Handler) monthlySales(w http.ResponseWriter, r *http.Request) {
	month, err := h.reportTime(r, "month", "2006-01")
	if err != nil {
		respondErr(w, r, err)
		return
	}
	from, to := sales.MonthRange(month)
	h.respondSummary(w, r, from, to)
}

func (h *Handler) reportTime(r *http.Request, param, layout string) (time.Time, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return h.now(), nil
	}
	t, err := time.ParseInLocation(layout, raw, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validationf(param, "must use the %s format", layout)
	}
	return t, nil
}

func (h *Handler) respondSummary(w http.ResponseWriter, r *http.Request, from, to time.Time) {
	summary, err := h.history.Summary(r.Context(), accountID(r), from, to)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
