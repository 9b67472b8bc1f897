package completion

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Kind string

const (
	KindGraph            Kind = "graph"
	KindDataRequirements Kind = "data_requirements"
	KindInsights         Kind = "insights"
)

func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(value)); k {
	case KindGraph, KindDataRequirements, KindInsights:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
	}
}

// Request is one completion request. Data and Schema are serialized into the user prompt.
type Request struct {
	Kind   Kind
	Prompt string
	Data   any
	Schema any
}

const graphSystemPrompt = "You are a data visualization expert for plant maintenance data. " +
	"Produce chart configurations for the inspection data you are given.\n\n" +
	"Pick the rendering library first:\n" +
	"- \"library\": \"chartjs\" for bar, line, pie, doughnut, radar and scatter charts\n" +
	"- \"library\": \"plotly\" for heatmaps, matrices, 3D plots, sankey, treemap, box plots and other complex views\n\n" +
	"Answer ONLY with JSON configurations, each inside a ```json fenced block, with no prose outside the blocks. " +
	"Every configuration must contain:\n" +
	"{\n  \"library\": \"chartjs\" or \"plotly\",\n  \"type\": \"chart type\",\n  \"data\": {...},\n" +
	"  \"options\": {...} (chartjs) or \"layout\": {...} (plotly)\n}\n\n" +
	"Chart.js configurations use v4 syntax: \"scales\": {\"y\": {\"beginAtZero\": true}} rather than \"yAxes\", " +
	"and titles under \"plugins\": {\"title\": {\"display\": true, \"text\": \"...\"}}.\n" +
	"Plotly configurations use the standard data array plus layout object.\n\n" +
	"The data may contain:\n" +
	"- thickness_data: raw wall-thickness readings\n" +
	"- thickness_time_series: readings with date, equipment_id, thickness_value, min_thickness, is_below_threshold\n" +
	"- risk_data: raw risk assessment rows\n" +
	"- risk_matrix: a ready Plotly heatmap (z, x, y); use it as is\n" +
	"- monthly_costs, equipment_totals, anomaly_severity, time_series: pre-computed summaries\n" +
	"- equipment: the equipment in scope\n\n" +
	"Draw thickness_time_series as lines grouped by equipment_id when it is present."

const dataRequirementsSystemPrompt = "You are a CMMS data analysis expert. Given a data schema and a user request, " +
	"decide exactly which tables, fields and aggregations the requested chart needs. " +
	"Answer ONLY with one JSON object.\n\n" +
	"Key data sources:\n" +
	"- thickness_measurement: 測定値(mm), 最小許容肉厚(mm), 検査日, 設備ID\n" +
	"- equipment_risk_assessment: リスクスコア, リスクレベル, 影響度ランク (5段階), 信頼性ランク (5段階), 設備ID\n" +
	"- equipment: 設備名, 設備種別ID, 稼働状態, 重要度, 設備ID\n" +
	"- maintenance_history: 実施日, コスト, 作業内容\n" +
	"- inspection_plan: 点検項目, 最終点検日, 次回点検日, 状態\n" +
	"- anomaly_report: 発生日時, 異常種別, 重大度, 状態\n\n" +
	"Map requests to tables:\n" +
	"- \"thickness\" or 肉厚 → thickness_measurement\n" +
	"- \"risk\" or リスク → equipment_risk_assessment\n" +
	"- \"cost\" or コスト → maintenance_history\n" +
	"- \"inspection\" or 点検 → inspection_plan\n" +
	"- \"anomaly\" or 異常 → anomaly_report"

const insightsSystemPrompt = "You are an industrial equipment inspection expert. Analyze the inspection results you are given " +
	"and report on equipment condition, trends and recommended maintenance. Call out anomalies explicitly."

// BuildPrompts renders the system and user prompt for the request kind.
func BuildPrompts(req Request) (string, string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", "", ErrMissingPrompt
	}
	switch req.Kind {
	case KindGraph:
		data, err := marshalPayload(req.Data)
		if err != nil {
			return "", "", err
		}
		user := fmt.Sprintf("Inspection data: %s\n\nRequest: %s\n\n"+
			"1. Use thickness_data or thickness_time_series when either is present.\n"+
			"2. thickness_time_series rows carry date, equipment_id and thickness_value.\n"+
			"3. Answer ONLY with ```json fenced configurations.\n"+
			"4. When data is missing, still return a valid configuration with empty data arrays.\n\n"+
			"Create the chart configuration now.", data, req.Prompt)
		return graphSystemPrompt, user, nil
	case KindDataRequirements:
		source := req.Schema
		if source == nil {
			source = req.Data
		}
		schema, err := marshalPayload(source)
		if err != nil {
			return "", "", err
		}
		user := fmt.Sprintf("Data schema: %s\n\nUser request: %q\n\n"+
			"Return a JSON object naming exactly the data you need:\n"+
			"{\n  \"tables\": [\"thickness_measurement\", \"equipment\"],\n"+
			"  \"fields\": [\"測定値(mm)\", \"検査日\", \"設備名\"],\n"+
			"  \"aggregations\": [\"thickness_time_series\"],\n"+
			"  \"time_grouping\": \"monthly\" or \"weekly\" or \"daily\" or null,\n"+
			"  \"chart_type\": \"line\" or \"bar\" or \"pie\" or \"heatmap\"\n}\n\n"+
			"Available aggregations:\n"+
			"- thickness_time_series: thickness readings over time\n"+
			"- risk_matrix: 5x5 risk matrix (影響度 vs 信頼性)\n"+
			"- monthly_costs: maintenance cost per month\n"+
			"- equipment_totals: maintenance count and cost per equipment\n"+
			"- anomaly_severity: anomaly count per severity\n\n"+
			"Request only what this visualization needs.", schema, req.Prompt)
		return dataRequirementsSystemPrompt, user, nil
	case KindInsights:
		data, err := marshalPayload(req.Data)
		if err != nil {
			return "", "", err
		}
		return insightsSystemPrompt, fmt.Sprintf("Analyze this inspection data: %s\n\n%s", data, req.Prompt), nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
}

func marshalPayload(v any) (string, error) {
	if raw, ok := v.(json.RawMessage); ok && len(raw) > 0 {
		return string(raw), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode prompt data: %w", err)
	}
	return string(data), nil
}
