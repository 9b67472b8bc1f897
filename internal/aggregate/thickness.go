package aggregate

import (
	"sort"

	"maintenance-dashboard/internal/models"
)

type ThicknessPoint struct {
	Date             string   `json:"date"`
	EquipmentID      string   `json:"equipment_id"`
	ThicknessValue   *float64 `json:"thickness_value"`
	MinThickness     *float64 `json:"min_thickness"`
	IsBelowThreshold bool     `json:"is_below_threshold"`
}

type ThicknessSeries []ThicknessPoint

func (ThicknessSeries) Kind() Kind { return KindThicknessSeries }

// ThicknessSeriesOf maps each reading to a point, oldest first. Readings on the same date keep
// their input order. A reading is below threshold only when both values are present and the
// measured value is smaller.
func ThicknessSeriesOf(measurements []models.ThicknessMeasurement) ThicknessSeries {
	sorted := make([]models.ThicknessMeasurement, len(measurements))
	copy(sorted, measurements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InspectedOn.Before(sorted[j].InspectedOn)
	})

	out := make(ThicknessSeries, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, ThicknessPoint{
			Date:             models.FormatDate(m.InspectedOn),
			EquipmentID:      m.EquipmentID,
			ThicknessValue:   m.Measured,
			MinThickness:     m.MinAllowed,
			IsBelowThreshold: m.Measured != nil && m.MinAllowed != nil && *m.Measured < *m.MinAllowed,
		})
	}
	return out
}
