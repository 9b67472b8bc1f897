// Package models holds the rows the maintenance dashboard reads from and writes to the
// hosted store. JSON keys follow the store's column labels verbatim so that rows can be
// forwarded to the completion API and the dashboard unchanged.
package models

import "time"

type Equipment struct {
	ID           string     `json:"設備ID"`
	Name         string     `json:"設備名"`
	CategoryID   int        `json:"設備種別ID"`
	Tag          string     `json:"設備タグ,omitempty"`
	Location     string     `json:"設置場所,omitempty"`
	Manufacturer string     `json:"製造者,omitempty"`
	Model        string     `json:"型式,omitempty"`
	InstalledOn  *time.Time `json:"設置年月日,omitempty"`
	Status       string     `json:"稼働状態,omitempty"`
	Criticality  string     `json:"重要度,omitempty"`
}

type MaintenanceRecord struct {
	ID          string     `json:"履歴ID"`
	EquipmentID string     `json:"設備ID"`
	PerformedOn time.Time  `json:"実施日"`
	Work        string     `json:"作業内容,omitempty"`
	Outcome     string     `json:"作業結果,omitempty"`
	Parts       string     `json:"使用部品,omitempty"`
	Hours       *float64   `json:"作業時間,omitempty"`
	Cost        float64    `json:"コスト"`
	NextDue     *time.Time `json:"次回推奨日,omitempty"`
}

type AnomalyReport struct {
	ID          string    `json:"報告ID"`
	EquipmentID string    `json:"設備ID"`
	OccurredAt  time.Time `json:"発生日時"`
	Kind        string    `json:"異常種別,omitempty"`
	Severity    string    `json:"重大度"`
	Symptom     string    `json:"症状,omitempty"`
	Cause       string    `json:"原因,omitempty"`
	Action      string    `json:"対処方法,omitempty"`
	Status      string    `json:"状態,omitempty"`
}

type InspectionPlan struct {
	ID            string     `json:"計画ID"`
	EquipmentID   string     `json:"設備ID"`
	Item          string     `json:"点検項目"`
	LastInspected *time.Time `json:"最終点検日,omitempty"`
	NextInspect   *time.Time `json:"次回点検日,omitempty"`
	Status        string     `json:"状態,omitempty"`
}

// ThicknessMeasurement is one wall-thickness reading. Measured and MinAllowed are nil when
// the store holds no value.
type ThicknessMeasurement struct {
	EquipmentID string    `json:"設備ID"`
	InspectedOn time.Time `json:"検査日"`
	Measured    *float64  `json:"測定値(mm)"`
	MinAllowed  *float64  `json:"最小許容肉厚(mm)"`
}

// RiskAssessment carries the raw impact and reliability ranks. The store holds either a
// number or a Japanese adjective in these columns, so the values stay untyped here.
type RiskAssessment struct {
	EquipmentID string `json:"設備ID"`
	Impact      any    `json:"影響度ランク (5段階)"`
	Reliability any    `json:"信頼性ランク (5段階)"`
}

type DashboardStats struct {
	TotalEquipment      int `json:"totalEquipment"`
	ActiveWorkOrders    int `json:"activeWorkOrders"`
	PendingAnomalies    int `json:"pendingAnomalies"`
	UpcomingInspections int `json:"upcomingInspections"`
}

// Table is a capped, untyped snapshot of one store table: the column labels in select order
// and the rows keyed by label.
type Table struct {
	Name    string           `json:"-"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Sample returns the first row or nil.
func (t Table) Sample() map[string]any {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}
