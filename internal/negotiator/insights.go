package negotiator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"maintenance-dashboard/internal/completion"
	"maintenance-dashboard/internal/models"
)

const defaultInsightPrompt = "%sの検査データを分析し、以下の観点から日本語でインサイトを提供してください：\n" +
	"1. 全体的な傾向と状態\n" +
	"2. 注意が必要な機器やコンポーネント\n" +
	"3. 異常パターンの有無\n" +
	"4. 推奨される保守アクション\n" +
	"5. 今後の監視ポイント"

// InsightData is the payload an insight request sends along with the prompt.
type InsightData struct {
	Equipment          []models.Equipment         `json:"equipment"`
	MaintenanceHistory []models.MaintenanceRecord `json:"maintenance_history"`
	AnomalyReports     []models.AnomalyReport     `json:"anomaly_report"`
	InspectionPlan     []map[string]any           `json:"inspection_plan"`
}

// Insights asks for a written analysis of the category's equipment. An empty prompt uses the
// default five-point analysis.
func (n *Negotiator) Insights(ctx context.Context, category int, prompt string) (completion.Result, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = fmt.Sprintf(defaultInsightPrompt, CategoryName(category))
	}
	data, err := n.insightData(ctx, category)
	if err != nil {
		return completion.Result{}, err
	}
	result, err := n.completer.Run(ctx, completion.Request{
		Kind:   completion.KindInsights,
		Prompt: prompt,
		Data:   data,
	})
	if err != nil {
		return completion.Result{}, fmt.Errorf("generate insights: %w", err)
	}
	return result, nil
}

func (n *Negotiator) insightData(ctx context.Context, category int) (InsightData, error) {
	data := InsightData{
		Equipment:          []models.Equipment{},
		MaintenanceHistory: []models.MaintenanceRecord{},
		AnomalyReports:     []models.AnomalyReport{},
		InspectionPlan:     []map[string]any{},
	}
	equipment, err := n.store.EquipmentByCategory(ctx, category)
	if err != nil {
		return InsightData{}, fmt.Errorf("fetch equipment for category %d: %w", category, err)
	}
	if len(equipment) == 0 {
		return data, nil
	}
	data.Equipment = equipment
	ids := make([]string, len(equipment))
	for i, eq := range equipment {
		ids[i] = eq.ID
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := n.store.MaintenanceHistory(gctx, ids, n.rowLimit)
		if err == nil && records != nil {
			data.MaintenanceHistory = records
		}
		return err
	})
	g.Go(func() error {
		reports, err := n.store.AnomalyReports(gctx, ids, n.rowLimit)
		if err == nil && reports != nil {
			data.AnomalyReports = reports
		}
		return err
	})
	g.Go(func() error {
		plans, err := n.store.TableRows(gctx, "inspection_plan", ids, n.rowLimit)
		if err == nil && plans.Rows != nil {
			data.InspectionPlan = plans.Rows
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return InsightData{}, fmt.Errorf("collect insight data: %w", err)
	}
	return data, nil
}
