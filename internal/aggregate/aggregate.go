// Package aggregate computes the named summaries handed to the chart prompt. Every function
// is pure and works on rows already read from the store.
package aggregate

import "strings"

type Kind string

const (
	KindMonthlyCosts    Kind = "monthly_costs"
	KindEquipmentTotals Kind = "equipment_totals"
	KindAnomalySeverity Kind = "anomaly_severity"
	KindThicknessSeries Kind = "thickness_time_series"
	KindRiskMatrix      Kind = "risk_matrix"
	KindTimeSeries      Kind = "time_series"
)

// Kinds lists the aggregations a requirements object may name, in prompt order.
var Kinds = []Kind{
	KindThicknessSeries,
	KindRiskMatrix,
	KindMonthlyCosts,
	KindEquipmentTotals,
	KindAnomalySeverity,
}

// ParseKind accepts the names in Kinds. time_series is driven by time_grouping instead.
func ParseKind(value string) (Kind, bool) {
	k := Kind(strings.TrimSpace(value))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Aggregation is one computed summary. The concrete types are MonthlyCosts,
// EquipmentTotals, SeverityCounts, ThicknessSeries, RiskMatrix and TimeSeries.
type Aggregation interface {
	Kind() Kind
}
