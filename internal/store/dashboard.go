package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"maintenance-dashboard/internal/models"
)

const (
	workOrderPlanned  = "計画中"
	anomalyInProgress = "対応中"
)

func (s *Store) ListWorkOrders(ctx context.Context, status string) ([]models.WorkOrder, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT "作業指示ID", COALESCE("設備ID", ''), COALESCE("作業種別ID", 0), "作業内容",
			COALESCE("優先度", ''), "計画開始日時", "計画終了日時", COALESCE("作業者ID", ''),
			COALESCE("状態", ''), COALESCE("備考", '')
		FROM work_order`
	var args []any
	if status != "" {
		query += ` WHERE "状態" = $1`
		args = append(args, status)
	}
	query += ` ORDER BY "計画開始日時" DESC NULLS LAST`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch work orders: %w", err)
	}
	defer rows.Close()

	var orders []models.WorkOrder
	for rows.Next() {
		var (
			wo         models.WorkOrder
			start, end sql.NullTime
			state      string
		)
		if err := rows.Scan(&wo.ID, &wo.EquipmentID, &wo.WorkTypeID, &wo.Description, &wo.Priority,
			&start, &end, &wo.AssigneeID, &state, &wo.Notes); err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		wo.PlannedStart = start.Time
		wo.PlannedEnd = end.Time
		wo.Status = models.WorkOrderStatus(state)
		orders = append(orders, wo)
	}
	return orders, rows.Err()
}

func (s *Store) ListInspectionPlans(ctx context.Context) ([]models.InspectionPlan, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT "計画ID", COALESCE("設備ID", ''), "点検項目", "最終点検日", "次回点検日",
			COALESCE("状態", '')
		FROM inspection_plan
		ORDER BY "次回点検日" ASC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("fetch inspection plans: %w", err)
	}
	defer rows.Close()

	var plans []models.InspectionPlan
	for rows.Next() {
		var (
			plan       models.InspectionPlan
			last, next sql.NullTime
		)
		if err := rows.Scan(&plan.ID, &plan.EquipmentID, &plan.Item, &last, &next, &plan.Status); err != nil {
			return nil, fmt.Errorf("scan inspection plan: %w", err)
		}
		plan.LastInspected = timePtr(last)
		plan.NextInspect = timePtr(next)
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// DashboardStats runs the four headline counts concurrently. Any failing count fails the call.
func (s *Store) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var stats models.DashboardStats
	g, ctx := errgroup.WithContext(ctx)
	count := func(dest *int, label, query string, args ...any) {
		g.Go(func() error {
			if err := s.db.QueryRowContext(ctx, query, args...).Scan(dest); err != nil {
				return fmt.Errorf("count %s: %w", label, err)
			}
			return nil
		})
	}
	count(&stats.TotalEquipment, "equipment", `SELECT COUNT(*) FROM equipment`)
	count(&stats.ActiveWorkOrders, "work orders",
		`SELECT COUNT(*) FROM work_order WHERE "状態" = $1`, workOrderPlanned)
	count(&stats.PendingAnomalies, "anomalies",
		`SELECT COUNT(*) FROM anomaly_report WHERE "状態" = $1`, anomalyInProgress)
	count(&stats.UpcomingInspections, "inspections",
		`SELECT COUNT(*) FROM inspection_plan WHERE "次回点検日" <= CURRENT_DATE`)

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
