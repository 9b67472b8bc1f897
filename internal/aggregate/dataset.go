package aggregate

import (
	"encoding/json"

	"maintenance-dashboard/internal/models"
)

// tableAliases are the extra keys the chart prompt looks for raw rows under.
var tableAliases = map[string]string{
	"thickness_measurement":     "thickness_data",
	"equipment_risk_assessment": "risk_data",
}

// TableInfo describes a snapshot without repeating its rows.
type TableInfo struct {
	Columns  []string       `json:"columns"`
	RowCount int            `json:"row_count"`
	Sample   map[string]any `json:"sample,omitempty"`
}

// Dataset is the request-scoped bundle of equipment, table snapshots and aggregations.
type Dataset struct {
	Equipment    []models.Equipment
	Tables       map[string]models.Table
	Aggregations map[Kind]Aggregation
}

func NewDataset(equipment []models.Equipment) *Dataset {
	return &Dataset{
		Equipment:    equipment,
		Tables:       map[string]models.Table{},
		Aggregations: map[Kind]Aggregation{},
	}
}

func (d *Dataset) Empty() bool {
	return d == nil || len(d.Equipment) == 0
}

func (d *Dataset) AddTable(t models.Table) {
	d.Tables[t.Name] = t
}

func (d *Dataset) Add(a Aggregation) {
	d.Aggregations[a.Kind()] = a
}

// MarshalJSON flattens the dataset into one object: equipment, each table's rows under its
// name (and alias), a tables metadata block, and each aggregation under its kind. An empty
// dataset encodes as {}.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	if d.Empty() {
		return []byte("{}"), nil
	}
	out := map[string]any{"equipment": d.Equipment}
	if len(d.Tables) > 0 {
		info := make(map[string]TableInfo, len(d.Tables))
		for name, t := range d.Tables {
			out[name] = t.Rows
			if alias, ok := tableAliases[name]; ok {
				out[alias] = t.Rows
			}
			info[name] = TableInfo{Columns: t.Columns, RowCount: len(t.Rows), Sample: t.Sample()}
		}
		out["tables"] = info
	}
	for kind, a := range d.Aggregations {
		out[string(kind)] = a
	}
	return json.Marshal(out)
}
