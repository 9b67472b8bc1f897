package negotiator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirementsFromModel(t *testing.T) {
	text := "```json\n" + `{
  "tables": ["anomaly_report", "equipment"],
  "fields": ["重大度"],
  "aggregations": ["anomaly_severity"],
  "time_grouping": null,
  "chart_type": "pie",
  "note": "extra keys are fine"
}` + "\n```"

	req, err := ParseRequirements(text, "異常の重大度")
	require.NoError(t, err)
	assert.Equal(t, SourceModel, req.Source)
	assert.Equal(t, []string{"anomaly_report", "equipment"}, req.Tables)
	assert.Equal(t, []string{"anomaly_severity"}, req.Aggregations)
	assert.Equal(t, "", req.TimeGrouping)
	assert.Equal(t, "pie", req.ChartType)
}

func TestParseRequirementsBareJSON(t *testing.T) {
	req, err := ParseRequirements(`  {"tables":["maintenance_history"],"aggregations":["monthly_costs"]}  `, "cost")
	require.NoError(t, err)
	assert.Equal(t, SourceModel, req.Source)
	assert.Equal(t, []string{"maintenance_history"}, req.Tables)
}

func TestParseRequirementsFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters string
		want    map[string]any
	}{
		{name: "object", filters: `{"ステータス": "対応中"}`, want: map[string]any{"ステータス": "対応中"}},
		{name: "null", filters: `null`},
		{name: "string", filters: `"none"`},
		{name: "list", filters: `["EQ001"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequirements(`{"tables":["anomaly_report"],"filters":`+tt.filters+`}`, "異常")
			require.NoError(t, err)
			assert.Equal(t, SourceModel, req.Source)
			assert.Equal(t, []string{"anomaly_report"}, req.Tables)
			assert.Equal(t, tt.want, req.Filters)
		})
	}
}

func TestParseRequirementsFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		request string
		want    string
	}{
		{name: "prose", text: "I think you need thickness data.", request: "show thickness trend", want: "thickness_time_series"},
		{name: "empty tables", text: `{"tables": []}`, request: "リスクマトリクス", want: "risk_matrix"},
		{name: "tables wrong type", text: `{"tables": "equipment"}`, request: "cost by month", want: "monthly_costs"},
		{name: "array", text: `["equipment"]`, request: "肉厚", want: "thickness_time_series"},
		{name: "empty", text: "", request: "anything", want: "monthly_costs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequirements(tt.text, tt.request)
			require.Error(t, err)
			assert.Equal(t, SourceFallback, req.Source)
			assert.Equal(t, []string{tt.want}, req.Aggregations[:1])
		})
	}
}

func TestFallbackRequirements(t *testing.T) {
	thickness := FallbackRequirements("Show THICKNESS over time")
	assert.Equal(t, []string{"thickness_measurement", "equipment"}, thickness.Tables)
	assert.Equal(t, "daily", thickness.TimeGrouping)
	assert.Equal(t, "line", thickness.ChartType)

	risk := FallbackRequirements("設備のリスク分布")
	assert.Equal(t, []string{"equipment_risk_assessment", "equipment"}, risk.Tables)
	assert.Equal(t, "heatmap", risk.ChartType)
	assert.Empty(t, risk.TimeGrouping)

	// thickness wins over risk when both appear
	both := FallbackRequirements("risk of low thickness")
	assert.Equal(t, []string{"thickness_time_series"}, both.Aggregations)

	cost := FallbackRequirements("月別の件数")
	assert.Equal(t, []string{"equipment", "maintenance_history"}, cost.Tables)
	assert.Equal(t, []string{"monthly_costs", "equipment_totals"}, cost.Aggregations)
	assert.Equal(t, "monthly", cost.TimeGrouping)
	assert.Equal(t, "bar", cost.ChartType)
	assert.Equal(t, SourceFallback, cost.Source)
}

func TestCatalog(t *testing.T) {
	catalog, err := loadCatalog(catalogYAML)
	require.NoError(t, err)

	var names []string
	for _, table := range catalog {
		names = append(names, table.Name)
		assert.NotEmpty(t, table.Description, table.Name)
		assert.NotEmpty(t, table.SampleValues, table.Name)
	}
	assert.Equal(t, []string{
		"equipment", "maintenance_history", "anomaly_report",
		"inspection_plan", "thickness_measurement", "equipment_risk_assessment",
	}, names)
	assert.True(t, catalog.Has("thickness_measurement"))
	assert.False(t, catalog.Has("staff_master"))

	_, err = loadCatalog([]byte("- name: broken\n"))
	require.Error(t, err)
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "静機器", CategoryName(1))
	assert.Equal(t, "回転機", CategoryName(2))
	assert.Equal(t, "電気", CategoryName(3))
	assert.Equal(t, "計装", CategoryName(4))
	assert.Equal(t, "未知", CategoryName(9))
}
