package negotiator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"maintenance-dashboard/internal/completion"
)

// ChartConfig is one Chart.js or Plotly configuration as the model wrote it.
type ChartConfig map[string]any

var chartBlockPattern = regexp.MustCompile("(?s)```json\r?\n(.*?)```")

// ExtractChartConfigs returns every ```json block of text that parses as a JSON object, in
// order. Blocks that do not parse are skipped.
func ExtractChartConfigs(text string) []ChartConfig {
	configs, _ := extractChartConfigs(text)
	return configs
}

func extractChartConfigs(text string) ([]ChartConfig, []error) {
	var (
		configs []ChartConfig
		errs    []error
	)
	for i, m := range chartBlockPattern.FindAllStringSubmatch(text, -1) {
		var cfg ChartConfig
		if err := json.Unmarshal([]byte(m[1]), &cfg); err != nil {
			errs = append(errs, fmt.Errorf("chart block %d: %w", i+1, err))
			continue
		}
		if cfg == nil {
			errs = append(errs, fmt.Errorf("chart block %d: not a JSON object", i+1))
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, errs
}

// ChartResult is the outcome of one chart request. Text is the raw model answer and is what
// callers show when Configs is empty.
type ChartResult struct {
	Requirements Requirements      `json:"requirements"`
	Configs      []ChartConfig     `json:"configs"`
	Text         string            `json:"text"`
	Usage        *completion.Usage `json:"usage,omitempty"`
}

// GenerateChart runs the full negotiation: schema, requirements, dataset, then the chart
// completion itself.
func (n *Negotiator) GenerateChart(ctx context.Context, category int, request string) (ChartResult, error) {
	schema, err := n.GetDataSchema(ctx, category)
	if err != nil {
		return ChartResult{}, err
	}
	req, reqUsage, err := n.AskForDataRequirements(ctx, schema, request)
	if err != nil {
		return ChartResult{}, fmt.Errorf("ask for data requirements: %w", err)
	}
	dataset, err := n.AggregateRequestedData(ctx, category, req)
	if err != nil {
		return ChartResult{}, err
	}

	result, err := n.completer.Run(ctx, completion.Request{
		Kind:   completion.KindGraph,
		Prompt: request,
		Data:   dataset,
	})
	if err != nil {
		return ChartResult{}, fmt.Errorf("generate chart: %w", err)
	}

	configs, errs := extractChartConfigs(result.Text)
	for _, err := range errs {
		n.logger.Warn("skipping chart block", zap.Error(err))
	}
	if len(configs) == 0 {
		n.logger.Info("no chart configuration in answer, returning text",
			zap.Int("category", category))
		configs = []ChartConfig{}
	}
	return ChartResult{
		Requirements: req,
		Configs:      configs,
		Text:         result.Text,
		Usage:        addUsage(reqUsage, result.Usage),
	}, nil
}

// addUsage sums the token counts of both calls. It is nil only when neither reported usage.
func addUsage(a, b *completion.Usage) *completion.Usage {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return &completion.Usage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
	}
}
