package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finsightco/finsight/pkg/llm"
	"github.com/finsightco/finsight/pkg/marketdata"
)

// DatabaseArgs is the typed argument record for database_query.
type DatabaseArgs struct {
	Query string `json:"query"`
}

// DatabaseTool runs read-only SQL against the financial store.
type DatabaseTool struct {
	store *marketdata.Store
}

// NewDatabaseTool creates the database_query tool over the given store.
func NewDatabaseTool(store *marketdata.Store) *DatabaseTool {
	return &DatabaseTool{store: store}
}

func (t *DatabaseTool) Name() string { return NameDatabaseQuery }

func (t *DatabaseTool) Description() string {
	return "Execute SQL queries on the financial database. " +
		"Available tables: " +
		"financial_news (id, date, company, sector, headline, sentiment, sentiment_score), " +
		"stock_prices (company, date, open_price, high_price, low_price, close_price, volume), " +
		"economic_indicators (date, indicator, value, period). Read-only."
}

func (t *DatabaseTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "A single SELECT statement",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *DatabaseTool) Invoke(ctx context.Context, args json.RawMessage) string {
	var a DatabaseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Sprintf("Database error: invalid arguments: %v", err)
	}
	if a.Query == "" {
		return "Database error: query is required"
	}
	return t.store.Query(ctx, a.Query)
}

var _ Tool = (*DatabaseTool)(nil)
