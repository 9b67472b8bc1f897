package negotiator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Requirements names the tables, fields and aggregations a chart needs.
type Requirements struct {
	Tables       []string       `json:"tables"`
	Fields       []string       `json:"fields"`
	Aggregations []string       `json:"aggregations"`
	TimeGrouping string         `json:"time_grouping,omitempty"`
	ChartType    string         `json:"chart_type,omitempty"`
	Filters      map[string]any `json:"filters,omitempty"`
	Source       Source         `json:"source"`
}

const requirementsSchema = `
#Requirements: {
	tables: [string, ...string]
	fields?: [...string]
	aggregations?: [...string]
	time_grouping?: string | null
	chart_type?: string | null
	filters?: _
	...
}
`

var fencePattern = regexp.MustCompile("(?s)```(?:json)?[ \t]*\r?\n(.*?)```")

// stripFence returns the body of the first fenced block, or the trimmed text when there is none.
func stripFence(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// validateRequirements checks the decoded model answer against the CUE schema.
func validateRequirements(body []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(requirementsSchema).LookupPath(cue.ParsePath("#Requirements"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile requirements schema: %w", err)
	}
	value := ctx.CompileBytes(body)
	if err := value.Err(); err != nil {
		return fmt.Errorf("requirements are not JSON: %w", err)
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("requirements do not match schema: %w", err)
	}
	return nil
}

// ParseRequirements decodes the model's answer. Anything unusable, including an empty table
// list, yields FallbackRequirements(request). The error reports why the fallback was taken
// and is informational only.
func ParseRequirements(text, request string) (Requirements, error) {
	body := []byte(stripFence(text))
	if err := validateRequirements(body); err != nil {
		return FallbackRequirements(request), err
	}
	var decoded struct {
		Requirements
		Filters json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return FallbackRequirements(request), fmt.Errorf("decode requirements: %w", err)
	}
	req := decoded.Requirements
	req.Filters = filtersOf(decoded.Filters)
	req.Source = SourceModel
	return req, nil
}

// filtersOf keeps filters only when the model sent an object. Models also answer "none" or a
// list, which says nothing about the rows to read.
func filtersOf(raw json.RawMessage) map[string]any {
	var filters map[string]any
	if err := json.Unmarshal(raw, &filters); err != nil {
		return nil
	}
	return filters
}

// FallbackRequirements picks a fixed requirement set from keywords in the request.
func FallbackRequirements(request string) Requirements {
	lower := strings.ToLower(request)
	switch {
	case strings.Contains(lower, "thickness") || strings.Contains(request, "肉厚"):
		return Requirements{
			Tables:       []string{"thickness_measurement", "equipment"},
			Fields:       []string{"測定値(mm)", "検査日", "設備名"},
			Aggregations: []string{"thickness_time_series"},
			TimeGrouping: "daily",
			ChartType:    "line",
			Source:       SourceFallback,
		}
	case strings.Contains(lower, "risk") || strings.Contains(request, "リスク"):
		return Requirements{
			Tables:       []string{"equipment_risk_assessment", "equipment"},
			Fields:       []string{"影響度ランク (5段階)", "信頼性ランク (5段階)", "設備名"},
			Aggregations: []string{"risk_matrix"},
			ChartType:    "heatmap",
			Source:       SourceFallback,
		}
	default:
		return Requirements{
			Tables:       []string{"equipment", "maintenance_history"},
			Fields:       []string{"設備名", "実施日", "コスト"},
			Aggregations: []string{"monthly_costs", "equipment_totals"},
			TimeGrouping: "monthly",
			ChartType:    "bar",
			Source:       SourceFallback,
		}
	}
}
