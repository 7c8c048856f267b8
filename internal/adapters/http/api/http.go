// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/mailboard/internal/adapters/chart"
	"github.com/okian/mailboard/internal/adapters/repository"
	"github.com/okian/mailboard/internal/adapters/session"
	service "github.com/okian/mailboard/internal/app"
	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/filter"
	"github.com/okian/mailboard/internal/domain/ingest"
	"github.com/okian/mailboard/internal/domain/insight"
	"github.com/okian/mailboard/pkg/metrics"
)

// SessionHeader carries the display session id.
const SessionHeader = "X-Session-ID"

const defaultRequestTimeout = 5 * time.Minute

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Ingest(ctx context.Context, name string, r io.Reader, size int64) (*service.Upload, error)
	DropDataset(ctx context.Context, id string) error
	Options(ctx context.Context, id string) (filter.Options, error)

	DefaultQuery() service.Query
	Dashboard(ctx context.Context, id string, q service.Query) (*service.Dashboard, error)
	Breakdown(ctx context.Context, id string, dim aggregate.Dimension, q service.Query) (*service.Section, error)
	CityGeo(ctx context.Context, id string, q service.Query) ([]aggregate.CityPoint, error)
	Replies(ctx context.Context, id string, q service.Query) ([]aggregate.CampaignReply, error)
	Leaders(ctx context.Context, id string, q service.Query) ([]aggregate.CampaignLeader, error)
	Compare(ctx context.Context, id string, quarters []int, q service.Query) ([]aggregate.QuarterSummary, error)

	Insight(ctx context.Context, id, name string, q service.Query) (*service.InsightReport, error)
	Insights(ctx context.Context, id string, q service.Query) ([]service.InsightReport, error)
	Chart(ctx context.Context, id, name string, q service.Query, w io.Writer) error

	NewSession(ctx context.Context) (*session.Session, error)
	Session(ctx context.Context, id string) (*session.Session, error)
	ToggleDisplay(ctx context.Context, id string) (*session.Session, error)
	AttachDataset(ctx context.Context, sessionID, datasetID string) error
	FullNumbers(ctx context.Context, id string) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	datasetsHandler  *DatasetsHandler
	analyticsHandler *AnalyticsHandler
	insightsHandler  *InsightsHandler
	sessionsHandler  *SessionsHandler
	dashboardHandler *dashboardHandler

	allowedOrigins []string
	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins of the browser dashboard.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMaxUploadBytes bounds request bodies of uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.datasetsHandler.maxBytes = n
		}
	}
}

// WithRequestTimeout bounds the handling time of a request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		datasetsHandler:  NewDatasetsHandler(deps, ingest.DefaultMaxBytes),
		analyticsHandler: NewAnalyticsHandler(deps),
		insightsHandler:  NewInsightsHandler(deps),
		sessionsHandler:  NewSessionsHandler(deps),
		dashboardHandler: newDashboardHandler(),
		requestTimeout:   defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", SessionHeader},
			ExposedHeaders: []string{SessionHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/dashboard", s.dashboardHandler.HandleDashboard)

	r.Route("/datasets", func(r chi.Router) {
		r.Post("/", MetricsMiddleware(s.datasetsHandler.HandleUpload, "datasets_upload"))
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", MetricsMiddleware(s.datasetsHandler.HandleDelete, "datasets_delete"))
			r.Get("/options", MetricsMiddleware(s.datasetsHandler.HandleOptions, "options"))
			r.Get("/summary", MetricsMiddleware(s.analyticsHandler.HandleSummary, "summary"))
			r.Get("/breakdowns/{dimension}", MetricsMiddleware(s.analyticsHandler.HandleBreakdown, "breakdown"))
			r.Get("/geo", MetricsMiddleware(s.analyticsHandler.HandleGeo, "geo"))
			r.Get("/replies", MetricsMiddleware(s.analyticsHandler.HandleReplies, "replies"))
			r.Get("/leaders", MetricsMiddleware(s.analyticsHandler.HandleLeaders, "leaders"))
			r.Get("/compare", MetricsMiddleware(s.analyticsHandler.HandleCompare, "compare"))
			r.Get("/insights", MetricsMiddleware(s.insightsHandler.HandleInsights, "insights"))
			r.Get("/insights/{provider}", MetricsMiddleware(s.insightsHandler.HandleInsight, "insight"))
			r.Get("/charts/{chart}.png", MetricsMiddleware(s.insightsHandler.HandleChart, "chart"))
		})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions_create"))
		r.Get("/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "sessions_get"))
		r.Post("/{id}/display/toggle", MetricsMiddleware(s.sessionsHandler.HandleToggle, "sessions_toggle"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates upstream errors into status codes.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, ingest.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, ingest.ErrLoad):
		return http.StatusUnprocessableEntity, "load_error"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "dataset_not_found"
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, aggregate.ErrUnknownDimension),
		errors.Is(err, insight.ErrUnknownProvider),
		errors.Is(err, service.ErrUnknownChart):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, aggregate.ErrUnavailable):
		return http.StatusUnprocessableEntity, "unavailable"
	case errors.Is(err, insight.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, chart.ErrEmptyChart):
		return http.StatusUnprocessableEntity, "empty_result"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrNoFile),
		errors.Is(err, service.ErrNoFilename),
		errors.Is(err, aggregate.ErrTooFewQuarters),
		errors.Is(err, aggregate.ErrInvalidQuarter),
		errors.Is(err, aggregate.ErrInvalidTopN):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
