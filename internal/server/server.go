// Package server exposes the task generator, the completion proxy, chart negotiation and the
// dashboard read views over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"maintenance-dashboard/internal/completion"
	"maintenance-dashboard/internal/config"
	"maintenance-dashboard/internal/logging"
	"maintenance-dashboard/internal/models"
	"maintenance-dashboard/internal/negotiator"
	"maintenance-dashboard/internal/taskgen"
)

const shutdownTimeout = 10 * time.Second

type TaskGenerator interface {
	GenerateDailyTasks(ctx context.Context) (taskgen.Summary, error)
	GenerateTaskForStrategy(ctx context.Context, id string) (taskgen.Result, error)
}

type Completer interface {
	Run(ctx context.Context, req completion.Request) (completion.Result, error)
}

type Negotiator interface {
	GetDataSchema(ctx context.Context, category int) (negotiator.DataSchema, error)
	GenerateChart(ctx context.Context, category int, request string) (negotiator.ChartResult, error)
	Insights(ctx context.Context, category int, prompt string) (completion.Result, error)
}

// Store is the read side behind the dashboard views and the generation status endpoint.
type Store interface {
	Ping(ctx context.Context) error
	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	ListMaintenanceHistory(ctx context.Context, equipmentID string) ([]models.MaintenanceRecord, error)
	ListAnomalyReports(ctx context.Context, status string) ([]models.AnomalyReport, error)
	ListWorkOrders(ctx context.Context, status string) ([]models.WorkOrder, error)
	ListInspectionPlans(ctx context.Context) ([]models.InspectionPlan, error)
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
	UpcomingSchedule(ctx context.Context, days int) ([]models.ScheduleEntry, error)
	RecentGenerationLogs(ctx context.Context, limit int) ([]models.GenerationLogEntry, error)
}

type Deps struct {
	Store      Store
	Tasks      TaskGenerator
	Completer  Completer
	Negotiator Negotiator
}

type Server struct {
	cfg    config.Server
	deps   Deps
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg config.Server, deps Deps, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		now:    time.Now,
		logger: logging.OrNop(logger).Named("http"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed API wrapped in request id, access log and recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/tasks/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/tasks/generate", s.handleGenerationStatus)
	mux.HandleFunc("POST /api/tasks/generate-daily", s.handleGenerateDaily)
	mux.HandleFunc("GET /api/tasks/generate-daily", s.handleGenerateDailyManual)
	mux.HandleFunc("GET /api/cron/daily-tasks", s.handleCron)

	mux.HandleFunc("POST /api/completions", s.handleCompletion)
	mux.HandleFunc("POST /api/chatgpt", s.handleCompletion)
	mux.HandleFunc("POST /api/charts", s.handleChart)
	mux.HandleFunc("POST /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/schema", s.handleSchema)

	mux.HandleFunc("GET /api/equipment", s.handleEquipment)
	mux.HandleFunc("GET /api/maintenance-history", s.handleMaintenanceHistory)
	mux.HandleFunc("GET /api/anomalies", s.handleAnomalies)
	mux.HandleFunc("GET /api/work-orders", s.handleWorkOrders)
	mux.HandleFunc("GET /api/inspection-plans", s.handleInspectionPlans)
	mux.HandleFunc("GET /api/dashboard/stats", s.handleDashboardStats)

	return s.withRequestID(s.withAccessLog(s.withRecovery(mux)))
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
