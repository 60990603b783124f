package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finsightco/finsight/pkg/llm"
)

// RatioArgs is the typed argument record for ratio_calculator. Each metric
// reads only its own fields.
type RatioArgs struct {
	MetricType string `json:"metric_type"`

	Price            float64 `json:"price"`
	EarningsPerShare float64 `json:"earnings_per_share"`

	NetIncome          float64 `json:"net_income"`
	ShareholdersEquity float64 `json:"shareholders_equity"`

	CurrentAssets      float64 `json:"current_assets"`
	CurrentLiabilities float64 `json:"current_liabilities"`

	TotalDebt float64 `json:"total_debt"`

	Revenue float64 `json:"revenue"`
}

// RatioTool computes common financial ratios.
type RatioTool struct{}

// NewRatioTool creates the ratio_calculator tool.
func NewRatioTool() *RatioTool {
	return &RatioTool{}
}

func (t *RatioTool) Name() string { return NameRatioCalculator }

func (t *RatioTool) Description() string {
	return "Calculate common financial ratios. Supported metrics: " +
		"pe_ratio, roe, current_ratio, debt_to_equity, profit_margin."
}

func (t *RatioTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"metric_type": map[string]any{
					"type": "string",
					"enum": []string{"pe_ratio", "roe", "current_ratio", "debt_to_equity", "profit_margin"},
				},
				"price":               map[string]any{"type": "number"},
				"earnings_per_share":  map[string]any{"type": "number"},
				"net_income":          map[string]any{"type": "number"},
				"shareholders_equity": map[string]any{"type": "number"},
				"current_assets":      map[string]any{"type": "number"},
				"current_liabilities": map[string]any{"type": "number"},
				"total_debt":          map[string]any{"type": "number"},
				"revenue":             map[string]any{"type": "number"},
			},
			"required": []string{"metric_type"},
		},
	}
}

func (t *RatioTool) Invoke(ctx context.Context, args json.RawMessage) string {
	var a RatioArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Sprintf("Calculation error: invalid arguments: %v", err)
	}
	return CalculateRatio(a)
}

// CalculateRatio dispatches over the closed metric set. Zero denominators
// produce a "Cannot calculate" message, never a division error.
func CalculateRatio(a RatioArgs) string {
	switch strings.ToLower(a.MetricType) {
	case "pe_ratio":
		if a.EarningsPerShare == 0 {
			return "P/E Ratio: Cannot calculate (EPS is zero)"
		}
		return fmt.Sprintf("P/E Ratio: %.2f", a.Price/a.EarningsPerShare)

	case "roe":
		if a.ShareholdersEquity == 0 {
			return "ROE: Cannot calculate (Equity is zero)"
		}
		return fmt.Sprintf("ROE: %.2f%%", a.NetIncome/a.ShareholdersEquity*100)

	case "current_ratio":
		if a.CurrentLiabilities == 0 {
			return "Current Ratio: Cannot calculate (Liabilities are zero)"
		}
		return fmt.Sprintf("Current Ratio: %.2f", a.CurrentAssets/a.CurrentLiabilities)

	case "debt_to_equity":
		if a.ShareholdersEquity == 0 {
			return "Debt-to-Equity: Cannot calculate (Equity is zero)"
		}
		return fmt.Sprintf("Debt-to-Equity: %.2f", a.TotalDebt/a.ShareholdersEquity)

	case "profit_margin":
		if a.Revenue == 0 {
			return "Profit Margin: Cannot calculate (Revenue is zero)"
		}
		return fmt.Sprintf("Profit Margin: %.2f%%", a.NetIncome/a.Revenue*100)

	default:
		return fmt.Sprintf("Unsupported metric type: %s", a.MetricType)
	}
}

var _ Tool = (*RatioTool)(nil)
