package server

import (
	"context"
	"fmt"
	"sync"

	"maintenance-dashboard/internal/completion"
	"maintenance-dashboard/internal/models"
	"maintenance-dashboard/internal/negotiator"
	"maintenance-dashboard/internal/taskgen"
)

type fakeTasks struct {
	mu      sync.Mutex
	batches int

	summary    taskgen.Summary
	summaryErr error
	results    map[string]taskgen.Result
	strategies []string
}

func (f *fakeTasks) GenerateDailyTasks(context.Context) (taskgen.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	return f.summary, f.summaryErr
}

func (f *fakeTasks) GenerateTaskForStrategy(_ context.Context, id string) (taskgen.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strategies = append(f.strategies, id)
	result, ok := f.results[id]
	if !ok {
		return taskgen.Result{Error: "Strategy not found"}, fmt.Errorf("%w: %s", taskgen.ErrStrategyNotFound, id)
	}
	return result, nil
}

type fakeCompleter struct {
	mu   sync.Mutex
	last completion.Request
	text string
	err  error
}

func (f *fakeCompleter) Run(_ context.Context, req completion.Request) (completion.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	if f.err != nil {
		return completion.Result{}, f.err
	}
	return completion.Result{Text: f.text, Usage: &completion.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}}, nil
}

type fakeNegotiator struct {
	chart    negotiator.ChartResult
	insight  completion.Result
	err      error
	category int
	prompt   string
}

func (f *fakeNegotiator) GetDataSchema(_ context.Context, category int) (negotiator.DataSchema, error) {
	f.category = category
	if f.err != nil {
		return negotiator.DataSchema{}, f.err
	}
	return negotiator.DataSchema{Category: negotiator.CategoryName(category), EquipmentCount: 5, DateRange: "2024-01-01 to 2024-12-31"}, nil
}

func (f *fakeNegotiator) GenerateChart(_ context.Context, category int, request string) (negotiator.ChartResult, error) {
	f.category, f.prompt = category, request
	return f.chart, f.err
}

func (f *fakeNegotiator) Insights(_ context.Context, category int, prompt string) (completion.Result, error) {
	f.category, f.prompt = category, prompt
	return f.insight, f.err
}

type fakeStore struct {
	equipment []models.Equipment
	stats     models.DashboardStats
	err       error

	lastFilter string
	lastDays   int
	pingErr    error
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeStore) ListEquipment(context.Context) ([]models.Equipment, error) {
	return f.equipment, f.err
}

func (f *fakeStore) ListMaintenanceHistory(_ context.Context, equipmentID string) ([]models.MaintenanceRecord, error) {
	f.lastFilter = equipmentID
	return nil, f.err
}

func (f *fakeStore) ListAnomalyReports(_ context.Context, status string) ([]models.AnomalyReport, error) {
	f.lastFilter = status
	return nil, f.err
}

func (f *fakeStore) ListWorkOrders(_ context.Context, status string) ([]models.WorkOrder, error) {
	f.lastFilter = status
	return []models.WorkOrder{{ID: "WO000001", Status: models.WorkOrderScheduled}}, f.err
}

func (f *fakeStore) ListInspectionPlans(context.Context) ([]models.InspectionPlan, error) {
	return nil, f.err
}

func (f *fakeStore) DashboardStats(context.Context) (models.DashboardStats, error) {
	return f.stats, f.err
}

func (f *fakeStore) UpcomingSchedule(_ context.Context, days int) ([]models.ScheduleEntry, error) {
	f.lastDays = days
	return []models.ScheduleEntry{{Strategy: models.EquipmentStrategy{StrategyID: "ST1"}, Status: models.ScheduleDue}}, f.err
}

func (f *fakeStore) RecentGenerationLogs(context.Context, int) ([]models.GenerationLogEntry, error) {
	return nil, f.err
}
