package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/mailboard/internal/domain/aggregate"
)

// AnalyticsHandler serves the aggregate views of a dataset.
type AnalyticsHandler struct {
	deps Dependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps Dependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// listResponse wraps list results so empty selections carry a notice.
type listResponse[T any] struct {
	Items  []T                           `json:"items"`
	Notice *aggregate.EmptyResultWarning `json:"notice,omitempty"`
}

func newList[T any](section string, items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Notice: aggregate.GroupNotice(section, len(items))}
}

// HandleSummary handles GET /datasets/{id}/summary.
func (h *AnalyticsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.summary"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	d, err := h.deps.Dashboard(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleBreakdown handles GET /datasets/{id}/breakdowns/{dimension}.
func (h *AnalyticsHandler) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	const op = "api.breakdown"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	dim := aggregate.Dimension(chi.URLParam(r, "dimension"))
	sec, err := h.deps.Breakdown(r.Context(), chi.URLParam(r, "id"), dim, q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

// HandleGeo handles GET /datasets/{id}/geo.
func (h *AnalyticsHandler) HandleGeo(w http.ResponseWriter, r *http.Request) {
	const op = "api.geo"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	points, err := h.deps.CityGeo(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newList("geo", points))
}

// HandleReplies handles GET /datasets/{id}/replies.
func (h *AnalyticsHandler) HandleReplies(w http.ResponseWriter, r *http.Request) {
	const op = "api.replies"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	rows, err := h.deps.Replies(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newList("replies", rows))
}

// HandleLeaders handles GET /datasets/{id}/leaders.
func (h *AnalyticsHandler) HandleLeaders(w http.ResponseWriter, r *http.Request) {
	const op = "api.leaders"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	rows, err := h.deps.Leaders(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newList("leaders", rows))
}

// HandleCompare handles GET /datasets/{id}/compare?quarter=1&quarter=3.
func (h *AnalyticsHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare"
	q, err := parseQuery(r, h.deps)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	// quarter selects the compared columns here, not a row filter.
	quarters := q.Quarters
	if quarters == nil {
		quarters = defaultCompareQuarters()
	}
	q.Quarters = nil
	out, err := h.deps.Compare(r.Context(), chi.URLParam(r, "id"), quarters, q)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// defaultCompareQuarters is the comparison shown when no quarter is picked.
func defaultCompareQuarters() []int {
	return []int{1, 2, 3}
}
