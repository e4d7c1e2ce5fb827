package tools

import (
	"context"

	"github.com/RouteClaw/RouteClaw/internal/backend"
)

// HealthSummaryTool aggregates health metrics over a period.
type HealthSummaryTool struct {
	client *backend.Client
}

func NewHealthSummaryTool(client *backend.Client) *HealthSummaryTool {
	return &HealthSummaryTool{client: client}
}

func (t *HealthSummaryTool) Name() string { return "health_summary" }
func (t *HealthSummaryTool) Description() string {
	return "Summarize a health metric (sleep, steps, heart_rate, weight) over a period. Returns aggregates, never raw records."
}

func (t *HealthSummaryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"metric": map[string]any{
				"type":        "string",
				"description": "Metric name: sleep, steps, heart_rate or weight",
			},
			"period": map[string]any{
				"type":        "string",
				"description": "Aggregation period: day, week or month (default: week)",
			},
		},
		"required": []string{"metric"},
	}
}

func (t *HealthSummaryTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	metric := GetString(params, "metric", "")
	period := GetString(params, "period", "week")
	if metric == "" {
		return "Error: metric is required", nil
	}
	return renderResult(t.client.HealthSummary(ctx, metric, period)), nil
}

// SpendingTool reports spending totals for a category and period.
type SpendingTool struct {
	client *backend.Client
}

func NewSpendingTool(client *backend.Client) *SpendingTool {
	return &SpendingTool{client: client}
}

func (t *SpendingTool) Name() string { return "finance_spending" }
func (t *SpendingTool) Description() string {
	return "Report spending totals for a category (e.g. groceries, transport) over a period."
}

func (t *SpendingTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"description": "Spending category, or 'all' for a full breakdown",
			},
			"period": map[string]any{
				"type":        "string",
				"description": "Reporting period: week, month or year (default: month)",
			},
		},
		"required": []string{"category"},
	}
}

func (t *SpendingTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	category := GetString(params, "category", "")
	period := GetString(params, "period", "month")
	if category == "" {
		return "Error: category is required", nil
	}
	return renderResult(t.client.FinanceSpending(ctx, category, period)), nil
}
