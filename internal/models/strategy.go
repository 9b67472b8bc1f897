package models

import (
	"strings"
	"time"
)

type FrequencyType string

const (
	FrequencyDaily     FrequencyType = "DAILY"
	FrequencyWeekly    FrequencyType = "WEEKLY"
	FrequencyMonthly   FrequencyType = "MONTHLY"
	FrequencyQuarterly FrequencyType = "QUARTERLY"
	FrequencyAnnual    FrequencyType = "ANNUAL"
)

// ParseFrequencyType normalizes case and surrounding space. The second return value is false
// for anything outside the five known frequencies.
func ParseFrequencyType(value string) (FrequencyType, bool) {
	switch f := FrequencyType(strings.ToUpper(strings.TrimSpace(value))); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return f, true
	default:
		return f, false
	}
}

type ScheduleStatus string

const (
	ScheduleDue      ScheduleStatus = "DUE"
	ScheduleUpcoming ScheduleStatus = "UPCOMING"
)

// EquipmentStrategy is a recurring maintenance policy. The generator never mutates it.
type EquipmentStrategy struct {
	StrategyID             string        `json:"strategy_id"`
	EquipmentID            string        `json:"equipment_id"`
	Name                   string        `json:"strategy_name"`
	Type                   string        `json:"strategy_type"`
	FrequencyType          FrequencyType `json:"frequency_type"`
	FrequencyValue         int           `json:"frequency_value"`
	EstimatedDurationHours float64       `json:"estimated_duration_hours"`
	RequiredSkillLevel     string        `json:"required_skill_level,omitempty"`
	RequiredArea           string        `json:"required_area,omitempty"`
	TaskDescription        string        `json:"task_description"`
	SafetyRequirements     string        `json:"safety_requirements,omitempty"`
	ToolsRequired          string        `json:"tools_required,omitempty"`
	PartsRequired          string        `json:"parts_required,omitempty"`
	Priority               string        `json:"priority"`
	Active                 bool          `json:"is_active"`
}

// ScheduleEntry is the due state of one strategy.
type ScheduleEntry struct {
	Strategy    EquipmentStrategy `json:"strategy"`
	Status      ScheduleStatus    `json:"status"`
	NextDueDate *time.Time        `json:"next_due_date,omitempty"`
}

type Skill struct {
	Type  string `json:"skill_type"`
	Level string `json:"skill_level"`
	Area  string `json:"area"`
}

type StaffMember struct {
	ID     string  `json:"担当者ID"`
	Name   string  `json:"氏名"`
	Role   string  `json:"役職,omitempty"`
	Area   string  `json:"部署,omitempty"`
	Skills []Skill `json:"staff_skills"`
}

type WorkOrderStatus string

const (
	WorkOrderScheduled WorkOrderStatus = "SCHEDULED"
)

// MaintenanceWorkType is the 作業種別ID used for generated maintenance work.
const MaintenanceWorkType = 1

type WorkOrder struct {
	ID           string          `json:"作業指示ID"`
	EquipmentID  string          `json:"設備ID"`
	WorkTypeID   int             `json:"作業種別ID"`
	Description  string          `json:"作業内容"`
	Priority     string          `json:"優先度,omitempty"`
	PlannedStart time.Time       `json:"計画開始日時"`
	PlannedEnd   time.Time       `json:"計画終了日時"`
	AssigneeID   string          `json:"作業者ID,omitempty"`
	Status       WorkOrderStatus `json:"状態"`
	Notes        string          `json:"備考,omitempty"`
}

const GenerationStatusGenerated = "GENERATED"

// GenerationLogEntry is the append-only audit row written after each generated work order.
type GenerationLogEntry struct {
	StrategyID       string    `json:"strategy_id"`
	GeneratedOn      time.Time `json:"generated_date"`
	NextGenerationOn time.Time `json:"next_generation_date"`
	WorkOrderID      string    `json:"work_order_id,omitempty"`
	Status           string    `json:"status"`
	AssignedStaffID  string    `json:"assigned_staff_id,omitempty"`
	Notes            string    `json:"generation_notes,omitempty"`
}
