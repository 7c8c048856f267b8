package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SessionsHandler manages display sessions.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.NewSession(r.Context())
	if err != nil {
		writeFailure(w, "api.create_session", err)
		return
	}
	w.Header().Set(SessionHeader, sess.ID)
	writeJSON(w, http.StatusCreated, sess)
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "api.get_session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleToggle handles POST /sessions/{id}/display/toggle.
func (h *SessionsHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.ToggleDisplay(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, "api.toggle_display", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
