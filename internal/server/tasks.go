package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"maintenance-dashboard/internal/models"
	"maintenance-dashboard/internal/taskgen"
)

const (
	defaultStatusDays = 7
	recentLogLimit    = 20
)

type generateRequest struct {
	StrategyID string `json:"strategyId"`
}

type generateDetails struct {
	Generated int      `json:"generated"`
	Failed    int      `json:"failed"`
	Summary   []string `json:"summary"`
}

type generateResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	WorkOrderID string           `json:"workOrderId,omitempty"`
	Details     *generateDetails `json:"details,omitempty"`
}

// handleGenerate runs one strategy when the body names it, otherwise the daily batch. A body
// that is missing or not JSON means the batch.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body)

	if body.StrategyID != "" {
		result, err := s.deps.Tasks.GenerateTaskForStrategy(r.Context(), body.StrategyID)
		resp := generateResponse{Success: result.Success, WorkOrderID: result.WorkOrderID}
		if result.Success {
			resp.Message = "Task generated successfully: " + result.WorkOrderID
		} else {
			resp.Message = "Failed to generate task: " + result.Error
		}
		switch {
		case errors.Is(err, taskgen.ErrStrategyNotFound):
			writeJSON(w, http.StatusNotFound, resp)
		case err != nil:
			s.logger.Error("task generation failed", zap.String("strategy_id", body.StrategyID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, generateResponse{
				Message: "Task generation failed: " + err.Error(),
			})
		default:
			writeJSON(w, http.StatusOK, resp)
		}
		return
	}

	summary, err := s.deps.Tasks.GenerateDailyTasks(r.Context())
	if err != nil {
		s.logger.Error("daily task generation failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Success: summary.Success,
		Message: fmt.Sprintf("Task generation completed: %d generated, %d failed", summary.Generated, summary.Failed),
		Details: &generateDetails{
			Generated: summary.Generated,
			Failed:    summary.Failed,
			Summary:   nonNil(summary.Details),
		},
	})
}

type statusResponse struct {
	Success    bool                        `json:"success"`
	Message    string                      `json:"message"`
	Upcoming   []models.ScheduleEntry      `json:"upcoming"`
	RecentLogs []models.GenerationLogEntry `json:"recentLogs"`
}

func (s *Server) handleGenerationStatus(w http.ResponseWriter, r *http.Request) {
	days := defaultStatusDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "days must be a non-negative integer", err)
			return
		}
		days = parsed
	}

	upcoming, err := s.deps.Store.UpcomingSchedule(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get task generation status", err)
		return
	}
	logs, err := s.deps.Store.RecentGenerationLogs(r.Context(), recentLogLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get task generation status", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Success:    true,
		Message:    fmt.Sprintf("Upcoming task generation status for next %d days", days),
		Upcoming:   nonNil(upcoming),
		RecentLogs: nonNil(logs),
	})
}

// authorized compares the bearer token with the configured secret in constant time. An empty
// secret authorizes nobody.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.CronSecret == "" {
		return false
	}
	want := "Bearer " + s.cfg.CronSecret
	got := r.Header.Get("Authorization")
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// handleGenerateDaily is the scheduler hook. The secret is only enforced when one is set.
func (s *Server) handleGenerateDaily(w http.ResponseWriter, r *http.Request) {
	if s.cfg.CronSecret != "" && !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	summary, err := s.deps.Tasks.GenerateDailyTasks(r.Context())
	if err != nil {
		s.logger.Error("daily task generation failed", zap.Error(err))
	}
	status := http.StatusOK
	if !summary.Success {
		status = http.StatusInternalServerError
	}
	summary.Details = nonNil(summary.Details)
	writeJSON(w, status, summary)
}

func (s *Server) handleGenerateDailyManual(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("strategy_id"); id != "" {
		result, err := s.deps.Tasks.GenerateTaskForStrategy(r.Context(), id)
		switch {
		case errors.Is(err, taskgen.ErrStrategyNotFound):
			writeJSON(w, http.StatusNotFound, result)
		case err != nil:
			writeError(w, http.StatusInternalServerError, "Internal server error", err)
		default:
			writeJSON(w, http.StatusOK, result)
		}
		return
	}
	summary, err := s.deps.Tasks.GenerateDailyTasks(r.Context())
	if err != nil {
		s.logger.Error("daily task generation failed", zap.Error(err))
	}
	summary.Details = nonNil(summary.Details)
	writeJSON(w, http.StatusOK, summary)
}

type cronResponse struct {
	Success   bool             `json:"success"`
	Timestamp string           `json:"timestamp"`
	Results   *taskgen.Summary `json:"results,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// handleCron always requires the bearer secret.
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	s.logger.Info("starting scheduled task generation")
	summary, err := s.deps.Tasks.GenerateDailyTasks(r.Context())
	timestamp := s.now().UTC().Format(time.RFC3339Nano)
	if err != nil {
		s.logger.Error("scheduled task generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, cronResponse{Timestamp: timestamp, Error: err.Error()})
		return
	}
	status := http.StatusOK
	if !summary.Success {
		status = http.StatusInternalServerError
	}
	summary.Details = nonNil(summary.Details)
	writeJSON(w, status, cronResponse{Success: summary.Success, Timestamp: timestamp, Results: &summary})
}
