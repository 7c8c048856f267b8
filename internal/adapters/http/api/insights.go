package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// InsightsHandler serves predictive add-ons and charts.
type InsightsHandler struct {
	deps Dependencies
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(deps Dependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps}
}

// HandleInsights handles GET /datasets/{id}/insights. Each provider reports
// independently; insufficient data is a warning inside a 200 response.
func (h *InsightsHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	const op = "api.insights"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	reports, err := h.deps.Insights(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// HandleInsight handles GET /datasets/{id}/insights/{provider}.
func (h *InsightsHandler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	const op = "api.insight"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	rep, err := h.deps.Insight(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "provider"), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleChart handles GET /datasets/{id}/charts/{chart}.png.
func (h *InsightsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	// Render fully before writing so failures still produce a JSON error.
	var buf bytes.Buffer
	if err := h.deps.Chart(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "chart"), q, &buf); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
