package taskgen

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"maintenance-dashboard/internal/models"
	"maintenance-dashboard/internal/store"
)

// fakeStore records writes and fails the operations it is told to.
type fakeStore struct {
	mu sync.Mutex

	strategies []models.EquipmentStrategy
	staff      []models.StaffMember

	dueErr      error
	staffErr    error
	sequenceErr error
	logErr      error
	// failInsert names equipment ids whose work order insert fails.
	failInsert map[string]bool

	nextID     int
	workOrders []models.WorkOrder
	logs       []models.GenerationLogEntry
}

func (f *fakeStore) DueStrategies(context.Context) ([]models.EquipmentStrategy, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return f.strategies, nil
}

func (f *fakeStore) StrategyByID(_ context.Context, id string) (models.EquipmentStrategy, error) {
	for _, st := range f.strategies {
		if st.StrategyID == id {
			return st, nil
		}
	}
	return models.EquipmentStrategy{}, fmt.Errorf("strategy %s: %w", id, store.ErrNotFound)
}

func (f *fakeStore) AvailableStaff(context.Context) ([]models.StaffMember, error) {
	if f.staffErr != nil {
		return nil, f.staffErr
	}
	return f.staff, nil
}

func (f *fakeStore) NextWorkOrderID(context.Context) (string, error) {
	if f.sequenceErr != nil {
		return "", f.sequenceErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("WO%06d", f.nextID), nil
}

func (f *fakeStore) InsertWorkOrder(_ context.Context, wo models.WorkOrder) error {
	if f.failInsert[wo.EquipmentID] {
		return errors.New("insert rejected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workOrders = append(f.workOrders, wo)
	return nil
}

func (f *fakeStore) InsertGenerationLog(_ context.Context, entry models.GenerationLogEntry) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, entry)
	return nil
}

func strategy(id, equipment string) models.EquipmentStrategy {
	return models.EquipmentStrategy{
		StrategyID:             id,
		EquipmentID:            equipment,
		Name:                   "月次点検 " + id,
		FrequencyType:          models.FrequencyMonthly,
		FrequencyValue:         1,
		EstimatedDurationHours: 2.5,
		RequiredArea:           "第1工場",
		RequiredSkillLevel:     "上級",
		TaskDescription:        "ポンプ振動測定",
		Priority:               "高",
		Active:                 true,
	}
}
