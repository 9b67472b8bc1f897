package negotiator

import (
	"context"
	"errors"
	"sync"
	"time"

	"maintenance-dashboard/internal/completion"
	"maintenance-dashboard/internal/models"
)

type fakeStore struct {
	mu sync.Mutex

	equipment   []models.Equipment
	history     []models.MaintenanceRecord
	anomalies   []models.AnomalyReport
	thickness   []models.ThicknessMeasurement
	risks       []models.RiskAssessment
	first, last time.Time

	countErr  error
	rangeErr  error
	tablesErr error

	tableReads []string
	limits     []int
}

func (f *fakeStore) CountEquipment(_ context.Context, category int) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, eq := range f.equipment {
		if eq.CategoryID == category {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MaintenanceDateRange(context.Context) (time.Time, time.Time, error) {
	return f.first, f.last, f.rangeErr
}

func (f *fakeStore) EquipmentByCategory(_ context.Context, category int) ([]models.Equipment, error) {
	var out []models.Equipment
	for _, eq := range f.equipment {
		if eq.CategoryID == category {
			out = append(out, eq)
		}
	}
	return out, nil
}

func (f *fakeStore) record(limit int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
}

func (f *fakeStore) MaintenanceHistory(_ context.Context, _ []string, limit int) ([]models.MaintenanceRecord, error) {
	f.record(limit)
	return f.history, nil
}

func (f *fakeStore) AnomalyReports(_ context.Context, _ []string, limit int) ([]models.AnomalyReport, error) {
	f.record(limit)
	return f.anomalies, nil
}

func (f *fakeStore) ThicknessMeasurements(_ context.Context, _ []string, limit int) ([]models.ThicknessMeasurement, error) {
	f.record(limit)
	return f.thickness, nil
}

func (f *fakeStore) RiskAssessments(_ context.Context, _ []string, limit int) ([]models.RiskAssessment, error) {
	f.record(limit)
	return f.risks, nil
}

func (f *fakeStore) TableRows(_ context.Context, table string, ids []string, limit int) (models.Table, error) {
	if f.tablesErr != nil {
		return models.Table{}, f.tablesErr
	}
	f.record(limit)
	f.mu.Lock()
	f.tableReads = append(f.tableReads, table)
	f.mu.Unlock()
	rows := []map[string]any{}
	for _, id := range ids {
		rows = append(rows, map[string]any{"設備ID": id})
	}
	return models.Table{Name: table, Columns: []string{"設備ID"}, Rows: rows}, nil
}

// fakeCompleter answers each kind with a canned text and records the requests.
type fakeCompleter struct {
	mu       sync.Mutex
	answers  map[completion.Kind]string
	errs     map[completion.Kind]error
	requests []completion.Request
}

func (f *fakeCompleter) Run(_ context.Context, req completion.Request) (completion.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if err := f.errs[req.Kind]; err != nil {
		return completion.Result{}, err
	}
	text, ok := f.answers[req.Kind]
	if !ok {
		return completion.Result{}, errors.New("no canned answer")
	}
	return completion.Result{Text: text, Usage: &completion.Usage{TotalTokens: 42}}, nil
}

func (f *fakeCompleter) last() completion.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testEquipment() []models.Equipment {
	return []models.Equipment{
		{ID: "EQ001", Name: "熱交換器A", CategoryID: 1, Criticality: "高"},
		{ID: "EQ002", Name: "配管B", CategoryID: 1, Criticality: "中"},
		{ID: "EQ101", Name: "ポンプC", CategoryID: 2},
	}
}
