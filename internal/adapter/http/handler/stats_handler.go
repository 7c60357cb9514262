package handler

import (
	"net/http"

	"github.com/dashfin/finmirror/internal/adapter/http/dto"
	"github.com/dashfin/finmirror/internal/domain"
	"github.com/dashfin/finmirror/internal/usecase"
)

// StatsHandler serves derived views computed from the current snapshot.
type StatsHandler struct {
	store       *usecase.SnapshotStore
	chartPoints int
}

// NewStatsHandler creates a new StatsHandler. chartPoints is the
// default chart window when the request does not carry one.
func NewStatsHandler(store *usecase.SnapshotStore, chartPoints int) *StatsHandler {
	return &StatsHandler{
		store:       store,
		chartPoints: chartPoints,
	}
}

// Totals returns income, expense and balance over the full snapshot,
// plus the record count for the dashboard cards.
func (h *StatsHandler) Totals(w http.ResponseWriter, r *http.Request) {
	records := h.store.Records()
	totals := domain.ComputeTotals(records)
	writeJSON(w, http.StatusOK, dto.TotalsFromDomain(totals, len(records)))
}

// Chart returns the per-transaction chart series over the most recent
// records, oldest point first.
func (h *StatsHandler) Chart(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", h.chartPoints)
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid limit", "limit must be nonnegative")
		return
	}

	points := domain.ChartSeries(h.store.Records(), limit)
	writeJSON(w, http.StatusOK, map[string]any{"points": dto.ChartFromDomain(points)})
}
