// Package taskgen drafts work orders from due maintenance strategies and picks an assignee
// for each one.
package taskgen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintenance-dashboard/internal/logging"
	"maintenance-dashboard/internal/models"
	"maintenance-dashboard/internal/store"
)

var (
	// ErrFetchDue wraps a failed read of the due schedule. The whole run is aborted.
	ErrFetchDue = errors.New("fetch due strategies")
	// ErrStrategyNotFound is returned by GenerateTaskForStrategy for an unknown id.
	ErrStrategyNotFound = errors.New("strategy not found")
)

// Store is the slice of the maintenance store the generator needs.
type Store interface {
	DueStrategies(ctx context.Context) ([]models.EquipmentStrategy, error)
	StrategyByID(ctx context.Context, id string) (models.EquipmentStrategy, error)
	AvailableStaff(ctx context.Context) ([]models.StaffMember, error)
	NextWorkOrderID(ctx context.Context) (string, error)
	InsertWorkOrder(ctx context.Context, wo models.WorkOrder) error
	InsertGenerationLog(ctx context.Context, entry models.GenerationLogEntry) error
}

type Generator struct {
	store     Store
	logger    *zap.Logger
	now       func() time.Time
	startHour int
}

type Option func(*Generator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithWorkStartHour sets the hour generated work orders start at. Defaults to 8.
func WithWorkStartHour(hour int) Option {
	return func(g *Generator) { g.startHour = hour }
}

func New(s Store, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		store:     s,
		logger:    logging.OrNop(logger).Named("taskgen"),
		now:       time.Now,
		startHour: 8,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Summary reports one batch run.
type Summary struct {
	RunID     string   `json:"runId"`
	Success   bool     `json:"success"`
	Generated int      `json:"generated"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped,omitempty"`
	Details   []string `json:"details"`
}

// Result reports one strategy.
type Result struct {
	Success     bool   `json:"success"`
	WorkOrderID string `json:"workOrderId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// GenerateDailyTasks drafts one work order per due strategy, strictly one at a time. A failed
// strategy is counted and the loop moves on. Only a failed schedule read aborts the run, and
// then the error wraps ErrFetchDue.
func (g *Generator) GenerateDailyTasks(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), Success: true, Details: []string{}}
	log := g.logger.With(zap.String("run_id", summary.RunID))
	log.Info("starting daily task generation", zap.Time("at", g.now()))

	strategies, err := g.store.DueStrategies(ctx)
	if err != nil {
		summary.Success = false
		summary.Details = append(summary.Details, fmt.Sprintf("❌ Critical error in task generation: %v", err))
		log.Error("due strategy read failed", zap.Error(err))
		return summary, fmt.Errorf("%w: %w", ErrFetchDue, err)
	}
	log.Info("found due strategies", zap.Int("count", len(strategies)))

	for i, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			summary.Success = false
			summary.Skipped = len(strategies) - i
			summary.Details = append(summary.Details,
				fmt.Sprintf("⏹ Stopped before %d remaining strategies: %v", summary.Skipped, err))
			log.Warn("generation cancelled", zap.Int("remaining", summary.Skipped), zap.Error(err))
			break
		}
		result := g.generate(ctx, strategy)
		if result.Success {
			summary.Generated++
			summary.Details = append(summary.Details,
				fmt.Sprintf("✅ Generated task for %s (%s)", strategy.Name, strategy.EquipmentID))
			continue
		}
		summary.Failed++
		summary.Details = append(summary.Details,
			fmt.Sprintf("❌ Failed to generate task for %s: %s", strategy.Name, result.Error))
	}

	log.Info("generation summary",
		zap.Int("generated", summary.Generated),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Strings("details", summary.Details),
	)
	return summary, nil
}

// GenerateTaskForStrategy runs the same routine as the batch for a single strategy id.
func (g *Generator) GenerateTaskForStrategy(ctx context.Context, id string) (Result, error) {
	strategy, err := g.store.StrategyByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Result{Error: "Strategy not found"}, fmt.Errorf("%w: %s", ErrStrategyNotFound, id)
	}
	if err != nil {
		return Result{Error: err.Error()}, err
	}
	return g.generate(ctx, strategy), nil
}

func (g *Generator) generate(ctx context.Context, strategy models.EquipmentStrategy) Result {
	log := g.logger.With(zap.String("strategy_id", strategy.StrategyID))
	if err := validateStrategy(strategy); err != nil {
		return Result{Error: err.Error()}
	}

	assignee := g.bestStaff(ctx, strategy, log)
	workOrderID := g.workOrderID(ctx, log)
	now := g.now()
	start, end := plannedWindow(now, g.startHour, strategy.EstimatedDurationHours)

	wo := models.WorkOrder{
		ID:           workOrderID,
		EquipmentID:  strategy.EquipmentID,
		WorkTypeID:   models.MaintenanceWorkType,
		Description:  strategy.TaskDescription,
		Priority:     strategy.Priority,
		PlannedStart: start,
		PlannedEnd:   end,
		Status:       models.WorkOrderScheduled,
		Notes:        workOrderNotes(strategy),
	}
	assigneeName := "Unassigned"
	if assignee != nil {
		wo.AssigneeID = assignee.ID
		assigneeName = assignee.Name
	}
	if err := g.store.InsertWorkOrder(ctx, wo); err != nil {
		log.Warn("work order insert failed", zap.Error(err))
		return Result{Error: fmt.Sprintf("Failed to create work order: %v", err)}
	}

	entry := models.GenerationLogEntry{
		StrategyID:       strategy.StrategyID,
		GeneratedOn:      now,
		NextGenerationOn: NextGenerationDate(strategy.FrequencyType, strategy.FrequencyValue, now),
		WorkOrderID:      workOrderID,
		Status:           models.GenerationStatusGenerated,
		AssignedStaffID:  wo.AssigneeID,
		Notes:            "Auto-generated task assigned to " + assigneeName,
	}
	if err := g.store.InsertGenerationLog(ctx, entry); err != nil {
		log.Warn("failed to log generation", zap.Error(err))
	}

	log.Debug("generated work order",
		zap.String("work_order_id", workOrderID),
		zap.String("assignee", wo.AssigneeID),
		zap.Time("next_generation", entry.NextGenerationOn),
	)
	return Result{Success: true, WorkOrderID: workOrderID}
}

func validateStrategy(st models.EquipmentStrategy) error {
	switch {
	case strings.TrimSpace(st.EquipmentID) == "":
		return fmt.Errorf("strategy %s has no equipment", st.StrategyID)
	case strings.TrimSpace(st.TaskDescription) == "":
		return fmt.Errorf("strategy %s has no task description", st.StrategyID)
	}
	return nil
}

// bestStaff leaves the order unassigned when the staff pool cannot be read.
func (g *Generator) bestStaff(ctx context.Context, strategy models.EquipmentStrategy, log *zap.Logger) *models.StaffMember {
	pool, err := g.store.AvailableStaff(ctx)
	if err != nil {
		log.Warn("could not fetch staff data", zap.Error(err))
		return nil
	}
	best, score := BestStaff(pool, requirementOf(strategy))
	if best != nil {
		log.Debug("selected staff", zap.String("staff_id", best.ID), zap.Int("score", score))
	}
	return best
}

// workOrderID prefers the server-side sequence. The fallback is WO plus the last six
// millisecond digits and a random suffix, which is unlikely but not guaranteed to be unique.
func (g *Generator) workOrderID(ctx context.Context, log *zap.Logger) string {
	id, err := g.store.NextWorkOrderID(ctx)
	if err == nil {
		return id
	}
	fallback := fallbackWorkOrderID(g.now(), uuid.New())
	log.Warn("work order sequence unavailable, using fallback id",
		zap.String("work_order_id", fallback), zap.Error(err))
	return fallback
}

func fallbackWorkOrderID(now time.Time, suffix uuid.UUID) string {
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return "WO" + millis + "-" + strings.ReplaceAll(suffix.String(), "-", "")[:8]
}

func workOrderNotes(st models.EquipmentStrategy) string {
	return fmt.Sprintf("Auto-generated from strategy: %s\n\nSafety: %s\nTools: %s\nParts: %s",
		st.Name,
		orDefault(st.SafetyRequirements, "Standard safety protocols"),
		orDefault(st.ToolsRequired, "Standard tools"),
		orDefault(st.PartsRequired, "None specified"),
	)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
