package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"maintenance-dashboard/internal/models"
)

const strategyColumns = `
	e.strategy_id, e.equipment_id, e.strategy_name, COALESCE(e.strategy_type, ''),
	e.frequency_type, e.frequency_value, e.estimated_duration_hours,
	COALESCE(e.required_skill_level, ''), COALESCE(e.required_area, ''),
	e.task_description, COALESCE(e.safety_requirements, ''), COALESCE(e.tools_required, ''),
	COALESCE(e.parts_required, ''), COALESCE(e.priority, ''), e.is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStrategy(row rowScanner, extra ...any) (models.EquipmentStrategy, error) {
	var (
		st        models.EquipmentStrategy
		equipment sql.NullString
		frequency string
	)
	dest := []any{
		&st.StrategyID, &equipment, &st.Name, &st.Type,
		&frequency, &st.FrequencyValue, &st.EstimatedDurationHours,
		&st.RequiredSkillLevel, &st.RequiredArea,
		&st.TaskDescription, &st.SafetyRequirements, &st.ToolsRequired,
		&st.PartsRequired, &st.Priority, &st.Active,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.EquipmentStrategy{}, err
	}
	st.EquipmentID = equipment.String
	st.FrequencyType, _ = models.ParseFrequencyType(frequency)
	return st, nil
}

// DueStrategies returns the active strategies whose schedule entry is DUE or UPCOMING.
func (s *Store) DueStrategies(ctx context.Context) ([]models.EquipmentStrategy, error) {
	entries, err := s.scheduleEntries(ctx, `
		SELECT `+strategyColumns+`, s.status, s.next_due_date
		FROM equipment_strategy_schedule s
		JOIN equipment_strategy e ON e.strategy_id = s.strategy_id
		WHERE s.status IN ($1, $2) AND s.is_active AND e.is_active
		ORDER BY s.next_due_date NULLS LAST, e.strategy_id`,
		string(models.ScheduleDue), string(models.ScheduleUpcoming))
	if err != nil {
		return nil, fmt.Errorf("fetch due strategies: %w", err)
	}
	strategies := make([]models.EquipmentStrategy, 0, len(entries))
	for _, entry := range entries {
		strategies = append(strategies, entry.Strategy)
	}
	return strategies, nil
}

// UpcomingSchedule lists active schedule entries due within the next days.
func (s *Store) UpcomingSchedule(ctx context.Context, days int) ([]models.ScheduleEntry, error) {
	entries, err := s.scheduleEntries(ctx, `
		SELECT `+strategyColumns+`, s.status, s.next_due_date
		FROM equipment_strategy_schedule s
		JOIN equipment_strategy e ON e.strategy_id = s.strategy_id
		WHERE s.is_active AND e.is_active
			AND (s.next_due_date IS NULL OR s.next_due_date <= CURRENT_DATE + $1::int)
		ORDER BY s.next_due_date NULLS LAST, e.strategy_id`, days)
	if err != nil {
		return nil, fmt.Errorf("fetch upcoming schedule: %w", err)
	}
	return entries, nil
}

func (s *Store) scheduleEntries(ctx context.Context, query string, args ...any) ([]models.ScheduleEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		var (
			status string
			due    sql.NullTime
		)
		st, err := scanStrategy(rows, &status, &due)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.ScheduleEntry{
			Strategy:    st,
			Status:      models.ScheduleStatus(status),
			NextDueDate: timePtr(due),
		})
	}
	return entries, rows.Err()
}

// StrategyByID returns ErrNotFound when no strategy carries the id.
func (s *Store) StrategyByID(ctx context.Context, id string) (models.EquipmentStrategy, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+strategyColumns+`
		FROM equipment_strategy e WHERE e.strategy_id = $1`, id)
	st, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EquipmentStrategy{}, fmt.Errorf("strategy %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.EquipmentStrategy{}, fmt.Errorf("fetch strategy %s: %w", id, err)
	}
	return st, nil
}

// AvailableStaff returns every staff member with the skills currently marked available.
// Staff without an available skill are still returned, with no skills.
func (s *Store) AvailableStaff(ctx context.Context) ([]models.StaffMember, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT m."担当者ID", m."氏名", COALESCE(m."役職", ''), COALESCE(m."部署", ''),
			k.skill_type, k.skill_level, k.area
		FROM staff_master m
		LEFT JOIN staff_skills k ON k.staff_id = m."担当者ID" AND k.is_available
		ORDER BY m."担当者ID", k.id`)
	if err != nil {
		return nil, fmt.Errorf("fetch staff: %w", err)
	}
	defer rows.Close()

	var staff []models.StaffMember
	index := map[string]int{}
	for rows.Next() {
		var (
			member                 models.StaffMember
			skillType, level, area sql.NullString
		)
		if err := rows.Scan(&member.ID, &member.Name, &member.Role, &member.Area, &skillType, &level, &area); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		pos, seen := index[member.ID]
		if !seen {
			member.Skills = []models.Skill{}
			staff = append(staff, member)
			pos = len(staff) - 1
			index[member.ID] = pos
		}
		if skillType.Valid {
			staff[pos].Skills = append(staff[pos].Skills, models.Skill{
				Type:  skillType.String,
				Level: level.String,
				Area:  area.String,
			})
		}
	}
	return staff, rows.Err()
}
