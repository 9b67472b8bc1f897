package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"maintenance-dashboard/internal/models"
)

// snapshotTables are the tables TableRows may read. Each carries a "設備ID" column.
var snapshotTables = map[string]string{
	"maintenance_history":       `"実施日"`,
	"anomaly_report":            `"発生日時"`,
	"inspection_plan":           `"次回点検日"`,
	"work_order":                `"計画開始日時"`,
	"thickness_measurement":     `"検査日"`,
	"equipment_risk_assessment": `id`,
}

func (s *Store) CountEquipment(ctx context.Context, category int) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM equipment WHERE "設備種別ID" = $1`, category).Scan(&count); err != nil {
		return 0, fmt.Errorf("count equipment: %w", err)
	}
	return count, nil
}

// MaintenanceDateRange returns the earliest and latest 実施日. Both are zero when the history
// is empty.
func (s *Store) MaintenanceDateRange(ctx context.Context) (time.Time, time.Time, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var first, last sql.NullTime
	if err := s.db.QueryRowContext(ctx,
		`SELECT MIN("実施日"), MAX("実施日") FROM maintenance_history`).Scan(&first, &last); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("maintenance date range: %w", err)
	}
	return first.Time, last.Time, nil
}

func (s *Store) EquipmentByCategory(ctx context.Context, category int) ([]models.Equipment, error) {
	return s.queryEquipment(ctx, `WHERE "設備種別ID" = $1`, category)
}

func (s *Store) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	return s.queryEquipment(ctx, "")
}

func (s *Store) queryEquipment(ctx context.Context, where string, args ...any) ([]models.Equipment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT "設備ID", "設備名", COALESCE("設備種別ID", 0), COALESCE("設備タグ", ''),
			COALESCE("設置場所", ''), COALESCE("製造者", ''), COALESCE("型式", ''),
			"設置年月日", COALESCE("稼働状態", ''), COALESCE("重要度", '')
		FROM equipment `+where+`
		ORDER BY "設備ID"`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch equipment: %w", err)
	}
	defer rows.Close()

	var equipment []models.Equipment
	for rows.Next() {
		var (
			eq        models.Equipment
			installed sql.NullTime
		)
		if err := rows.Scan(&eq.ID, &eq.Name, &eq.CategoryID, &eq.Tag, &eq.Location,
			&eq.Manufacturer, &eq.Model, &installed, &eq.Status, &eq.Criticality); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		eq.InstalledOn = timePtr(installed)
		equipment = append(equipment, eq)
	}
	return equipment, rows.Err()
}

// MaintenanceHistory returns at most limit records for the equipment ids, oldest first.
func (s *Store) MaintenanceHistory(ctx context.Context, equipmentIDs []string, limit int) ([]models.MaintenanceRecord, error) {
	return s.queryMaintenance(ctx, `WHERE "設備ID" = ANY($1) ORDER BY "実施日" ASC LIMIT $2`, equipmentIDs, limit)
}

// ListMaintenanceHistory is the dashboard view, newest first, optionally for one equipment.
func (s *Store) ListMaintenanceHistory(ctx context.Context, equipmentID string) ([]models.MaintenanceRecord, error) {
	if equipmentID == "" {
		return s.queryMaintenance(ctx, `ORDER BY "実施日" DESC`)
	}
	return s.queryMaintenance(ctx, `WHERE "設備ID" = $1 ORDER BY "実施日" DESC`, equipmentID)
}

func (s *Store) queryMaintenance(ctx context.Context, tail string, args ...any) ([]models.MaintenanceRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT "履歴ID", COALESCE("設備ID", ''), "実施日", COALESCE("作業内容", ''),
			COALESCE("作業結果", ''), COALESCE("使用部品", ''), "作業時間",
			COALESCE("コスト", 0), "次回推奨日"
		FROM maintenance_history `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch maintenance history: %w", err)
	}
	defer rows.Close()

	var records []models.MaintenanceRecord
	for rows.Next() {
		var (
			rec   models.MaintenanceRecord
			hours sql.NullFloat64
			next  sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.EquipmentID, &rec.PerformedOn, &rec.Work,
			&rec.Outcome, &rec.Parts, &hours, &rec.Cost, &next); err != nil {
			return nil, fmt.Errorf("scan maintenance history: %w", err)
		}
		rec.Hours = floatPtr(hours)
		rec.NextDue = timePtr(next)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) AnomalyReports(ctx context.Context, equipmentIDs []string, limit int) ([]models.AnomalyReport, error) {
	return s.queryAnomalies(ctx, `WHERE "設備ID" = ANY($1) ORDER BY "発生日時" ASC LIMIT $2`, equipmentIDs, limit)
}

func (s *Store) ListAnomalyReports(ctx context.Context, status string) ([]models.AnomalyReport, error) {
	if status == "" {
		return s.queryAnomalies(ctx, `ORDER BY "発生日時" DESC`)
	}
	return s.queryAnomalies(ctx, `WHERE "状態" = $1 ORDER BY "発生日時" DESC`, status)
}

func (s *Store) queryAnomalies(ctx context.Context, tail string, args ...any) ([]models.AnomalyReport, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT "報告ID", COALESCE("設備ID", ''), "発生日時", COALESCE("異常種別", ''),
			COALESCE("重大度", ''), COALESCE("症状", ''), COALESCE("原因", ''),
			COALESCE("対処方法", ''), COALESCE("状態", '')
		FROM anomaly_report `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch anomaly reports: %w", err)
	}
	defer rows.Close()

	var reports []models.AnomalyReport
	for rows.Next() {
		var r models.AnomalyReport
		if err := rows.Scan(&r.ID, &r.EquipmentID, &r.OccurredAt, &r.Kind, &r.Severity,
			&r.Symptom, &r.Cause, &r.Action, &r.Status); err != nil {
			return nil, fmt.Errorf("scan anomaly report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) ThicknessMeasurements(ctx context.Context, equipmentIDs []string, limit int) ([]models.ThicknessMeasurement, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE("設備ID", ''), "検査日", "測定値(mm)", "最小許容肉厚(mm)"
		FROM thickness_measurement
		WHERE "設備ID" = ANY($1)
		ORDER BY "検査日" ASC
		LIMIT $2`, equipmentIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch thickness measurements: %w", err)
	}
	defer rows.Close()

	var readings []models.ThicknessMeasurement
	for rows.Next() {
		var (
			m                    models.ThicknessMeasurement
			measured, minAllowed sql.NullFloat64
		)
		if err := rows.Scan(&m.EquipmentID, &m.InspectedOn, &measured, &minAllowed); err != nil {
			return nil, fmt.Errorf("scan thickness measurement: %w", err)
		}
		m.Measured = floatPtr(measured)
		m.MinAllowed = floatPtr(minAllowed)
		readings = append(readings, m)
	}
	return readings, rows.Err()
}

// TableRows snapshots up to limit rows of an allow-listed table for the equipment ids.
func (s *Store) TableRows(ctx context.Context, table string, equipmentIDs []string, limit int) (models.Table, error) {
	order, ok := snapshotTables[table]
	if !ok {
		return models.Table{}, fmt.Errorf("table %q is not readable", table)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT * FROM %s WHERE "設備ID" = ANY($1) ORDER BY %s LIMIT $2`, table, order),
		equipmentIDs, limit)
	if err != nil {
		return models.Table{}, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.Table{}, fmt.Errorf("columns of %s: %w", table, err)
	}
	snapshot := models.Table{Name: table, Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return models.Table{}, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		snapshot.Rows = append(snapshot.Rows, row)
	}
	return snapshot, rows.Err()
}

// RiskAssessments keeps the rank columns untyped: older imports stored adjectives, newer ones
// numbers. Imports also disagree on the column names, "影響度ランク（5段階）" against
// "影響度ランク (5段階)", so the rank columns are found by label rather than named in SQL.
func (s *Store) RiskAssessments(ctx context.Context, equipmentIDs []string, limit int) ([]models.RiskAssessment, error) {
	table, err := s.TableRows(ctx, "equipment_risk_assessment", equipmentIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("risk assessments: %w", err)
	}
	return riskAssessmentsOf(table), nil
}

var (
	impactLabel      = rankLabel("影響度ランク (5段階)")
	reliabilityLabel = rankLabel("信頼性ランク (5段階)")
)

// rankLabel folds full-width brackets to ASCII and drops whitespace.
func rankLabel(column string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(column)), "")
}

func riskAssessmentsOf(table models.Table) []models.RiskAssessment {
	var impactColumns, reliabilityColumns []string
	for _, column := range table.Columns {
		switch rankLabel(column) {
		case impactLabel:
			impactColumns = append(impactColumns, column)
		case reliabilityLabel:
			reliabilityColumns = append(reliabilityColumns, column)
		}
	}

	assessments := make([]models.RiskAssessment, 0, len(table.Rows))
	for _, row := range table.Rows {
		a := models.RiskAssessment{
			Impact:      firstValue(row, impactColumns),
			Reliability: firstValue(row, reliabilityColumns),
		}
		if id, ok := row["設備ID"].(string); ok {
			a.EquipmentID = id
		}
		assessments = append(assessments, a)
	}
	return assessments
}

// firstValue returns the first non-empty value among columns, nil when every one is empty.
func firstValue(row map[string]any, columns []string) any {
	for _, column := range columns {
		switch v := row[column].(type) {
		case nil:
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		default:
			return v
		}
	}
	return nil
}
