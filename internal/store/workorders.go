package store

import (
	"context"
	"database/sql"
	"fmt"

	"maintenance-dashboard/internal/models"
)

// NextWorkOrderID asks the server-side sequence function for a fresh identifier.
func (s *Store) NextWorkOrderID(ctx context.Context) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT generate_work_order_id()`).Scan(&id); err != nil {
		return "", fmt.Errorf("generate work order id: %w", err)
	}
	if !id.Valid || id.String == "" {
		return "", fmt.Errorf("generate work order id: empty result")
	}
	return id.String, nil
}

func (s *Store) InsertWorkOrder(ctx context.Context, wo models.WorkOrder) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_order (
			"作業指示ID", "設備ID", "作業種別ID", "作業内容", "優先度",
			"計画開始日時", "計画終了日時", "作業者ID", "状態", "備考"
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,$9,$10
		)`,
		wo.ID,
		nullString(wo.EquipmentID),
		wo.WorkTypeID,
		wo.Description,
		nullString(wo.Priority),
		wo.PlannedStart,
		wo.PlannedEnd,
		nullString(wo.AssigneeID),
		string(wo.Status),
		nullString(wo.Notes),
	)
	if err != nil {
		return fmt.Errorf("create work order %s: %w", wo.ID, err)
	}
	return nil
}

func (s *Store) InsertGenerationLog(ctx context.Context, entry models.GenerationLogEntry) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_generation_log (
			strategy_id, generated_date, next_generation_date, work_order_id,
			status, assigned_staff_id, generation_notes
		) VALUES (
			$1,$2,$3,$4,
			$5,$6,$7
		)`,
		entry.StrategyID,
		models.DateOnly(entry.GeneratedOn),
		nullDate(entry.NextGenerationOn),
		nullString(entry.WorkOrderID),
		entry.Status,
		nullString(entry.AssignedStaffID),
		nullString(entry.Notes),
	)
	if err != nil {
		return fmt.Errorf("log generation for %s: %w", entry.StrategyID, err)
	}
	return nil
}

// RecentGenerationLogs returns the newest audit rows first.
func (s *Store) RecentGenerationLogs(ctx context.Context, limit int) ([]models.GenerationLogEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy_id, generated_date, next_generation_date, COALESCE(work_order_id, ''),
			status, COALESCE(assigned_staff_id, ''), COALESCE(generation_notes, '')
		FROM task_generation_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch generation log: %w", err)
	}
	defer rows.Close()

	var entries []models.GenerationLogEntry
	for rows.Next() {
		var (
			entry models.GenerationLogEntry
			next  sql.NullTime
		)
		if err := rows.Scan(&entry.StrategyID, &entry.GeneratedOn, &next, &entry.WorkOrderID,
			&entry.Status, &entry.AssignedStaffID, &entry.Notes); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		if next.Valid {
			entry.NextGenerationOn = next.Time
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
