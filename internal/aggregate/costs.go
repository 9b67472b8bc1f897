package aggregate

import (
	"sort"
	"strings"
	"time"

	"maintenance-dashboard/internal/models"
)

type MonthlyCost struct {
	Month string  `json:"month"`
	Cost  float64 `json:"cost"`
	Label string  `json:"month_label"`
}

type MonthlyCosts []MonthlyCost

func (MonthlyCosts) Kind() Kind { return KindMonthlyCosts }

// MonthlyCostsOf sums コスト per calendar month of 実施日, oldest month first.
func MonthlyCostsOf(records []models.MaintenanceRecord) MonthlyCosts {
	sums := map[string]float64{}
	for _, rec := range records {
		sums[rec.PerformedOn.Format("2006-01")] += rec.Cost
	}
	months := make([]string, 0, len(sums))
	for month := range sums {
		months = append(months, month)
	}
	sort.Strings(months)

	out := make(MonthlyCosts, 0, len(months))
	for _, month := range months {
		out = append(out, MonthlyCost{Month: month, Cost: sums[month], Label: month + "月"})
	}
	return out
}

type EquipmentTotal struct {
	EquipmentID      string  `json:"設備ID"`
	Name             string  `json:"設備名"`
	Criticality      string  `json:"重要度,omitempty"`
	MaintenanceCount int     `json:"maintenance_count"`
	TotalCost        float64 `json:"total_maintenance_cost"`
	AverageCost      float64 `json:"avg_maintenance_cost"`
}

type EquipmentTotals []EquipmentTotal

func (EquipmentTotals) Kind() Kind { return KindEquipmentTotals }

// EquipmentTotalsOf reports every equipment, in the given order, with its maintenance count
// and cost. Equipment without history reports zeros.
func EquipmentTotalsOf(equipment []models.Equipment, records []models.MaintenanceRecord) EquipmentTotals {
	type acc struct {
		count int
		total float64
	}
	byEquipment := map[string]*acc{}
	for _, rec := range records {
		a, ok := byEquipment[rec.EquipmentID]
		if !ok {
			a = &acc{}
			byEquipment[rec.EquipmentID] = a
		}
		a.count++
		a.total += rec.Cost
	}

	out := make(EquipmentTotals, 0, len(equipment))
	for _, eq := range equipment {
		total := EquipmentTotal{EquipmentID: eq.ID, Name: eq.Name, Criticality: eq.Criticality}
		if a, ok := byEquipment[eq.ID]; ok {
			total.MaintenanceCount = a.count
			total.TotalCost = a.total
			total.AverageCost = a.total / float64(a.count)
		}
		out = append(out, total)
	}
	return out
}

type Grouping string

const (
	GroupDaily   Grouping = "daily"
	GroupWeekly  Grouping = "weekly"
	GroupMonthly Grouping = "monthly"
)

func ParseGrouping(value string) (Grouping, bool) {
	switch g := Grouping(strings.ToLower(strings.TrimSpace(value))); g {
	case GroupDaily, GroupWeekly, GroupMonthly:
		return g, true
	default:
		return "", false
	}
}

type TimePoint struct {
	Period    string  `json:"period"`
	Count     int     `json:"maintenance_count"`
	TotalCost float64 `json:"total_cost"`
}

type TimeSeries struct {
	Grouping Grouping    `json:"grouping"`
	Points   []TimePoint `json:"points"`
}

func (TimeSeries) Kind() Kind { return KindTimeSeries }

// TimeSeriesOf buckets maintenance records by day, by week starting Monday, or by month.
// Periods are sorted ascending.
func TimeSeriesOf(records []models.MaintenanceRecord, grouping Grouping) TimeSeries {
	type acc struct {
		count int
		total float64
	}
	buckets := map[string]*acc{}
	for _, rec := range records {
		key := periodKey(rec.PerformedOn, grouping)
		a, ok := buckets[key]
		if !ok {
			a = &acc{}
			buckets[key] = a
		}
		a.count++
		a.total += rec.Cost
	}
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := TimeSeries{Grouping: grouping, Points: make([]TimePoint, 0, len(keys))}
	for _, key := range keys {
		series.Points = append(series.Points, TimePoint{Period: key, Count: buckets[key].count, TotalCost: buckets[key].total})
	}
	return series
}

func periodKey(t time.Time, grouping Grouping) string {
	switch grouping {
	case GroupDaily:
		return t.Format(models.DateLayout)
	case GroupWeekly:
		offset := (int(t.Weekday()) + 6) % 7
		return models.DateOnly(t).AddDate(0, 0, -offset).Format(models.DateLayout)
	default:
		return t.Format("2006-01")
	}
}
