package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"maintenance-dashboard/internal/negotiator"
	"maintenance-dashboard/internal/taskgen"
)

const ruleWidth = 38

func printSummary(w io.Writer, summary taskgen.Summary) {
	fmt.Fprintln(w, "Maintenance Task Generation")
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(w, "Run: %s\n", summary.RunID)
	status := "completed"
	if !summary.Success {
		status = "aborted"
	}
	fmt.Fprintf(w, "Status: %s\n", status)
	fmt.Fprintf(w, "Generated: %d | Failed: %d\n", summary.Generated, summary.Failed)
	if summary.Skipped > 0 {
		fmt.Fprintf(w, "Skipped: %d\n", summary.Skipped)
	}

	fmt.Fprintln(w, "\nDetails")
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	if len(summary.Details) == 0 {
		fmt.Fprintln(w, "No due strategies.")
		return
	}
	for _, line := range summary.Details {
		fmt.Fprintln(w, line)
	}
}

func printResult(w io.Writer, strategyID string, result taskgen.Result) {
	if result.Success {
		fmt.Fprintf(w, "Strategy %s: generated %s\n", strategyID, result.WorkOrderID)
		return
	}
	fmt.Fprintf(w, "Strategy %s: failed: %s\n", strategyID, result.Error)
}

func printChart(w io.Writer, result negotiator.ChartResult) error {
	req := result.Requirements
	fmt.Fprintf(w, "Requirements (%s)\n", req.Source)
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	fmt.Fprintf(w, "Tables: %s\n", strings.Join(req.Tables, ", "))
	if len(req.Aggregations) > 0 {
		fmt.Fprintf(w, "Aggregations: %s\n", strings.Join(req.Aggregations, ", "))
	}
	if req.ChartType != "" {
		fmt.Fprintf(w, "Chart type: %s\n", req.ChartType)
	}

	if len(result.Configs) == 0 {
		fmt.Fprintln(w, "\nNo chart configuration found; model answer:")
		fmt.Fprintln(w, result.Text)
		return nil
	}
	for i, cfg := range result.Configs {
		fmt.Fprintf(w, "\nChart %d\n", i+1)
		if err := printJSON(w, cfg); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func renderMarkdown(text string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return renderer.Render(text)
}
