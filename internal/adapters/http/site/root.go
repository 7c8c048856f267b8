// Package site serves the entry points a browser lands on.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DashboardPath is where the browser dashboard lives.
const DashboardPath = "/dashboard"

const robotsTxt = "User-agent: *\nDisallow: /datasets/\nDisallow: /sessions/\n"

// Register attaches the root routes to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	root := NewRootHandler()
	r.Get("/", root.HandleRoot)
	r.Get("/robots.txt", root.HandleRobots)
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot sends browsers to the dashboard.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, DashboardPath, http.StatusFound)
}

// HandleRobots keeps crawlers away from uploaded data.
func (h *RootHandler) HandleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(robotsTxt))
}
