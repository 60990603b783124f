package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finsightco/finsight/pkg/llm"
	"github.com/finsightco/finsight/pkg/marketdata"
)

// SentimentArgs is the typed argument record for market_sentiment.
type SentimentArgs struct {
	Company string `json:"company,omitempty"`
	Sector  string `json:"sector,omitempty"`
	Days    int    `json:"days,omitempty"`
}

// SentimentTool aggregates sentiment label counts and average scores from
// the news table.
type SentimentTool struct {
	store *marketdata.Store
}

// NewSentimentTool creates the market_sentiment tool over the given store.
func NewSentimentTool(store *marketdata.Store) *SentimentTool {
	return &SentimentTool{store: store}
}

func (t *SentimentTool) Name() string { return NameMarketSentiment }

func (t *SentimentTool) Description() string {
	return "Analyze market sentiment from financial news, optionally filtered " +
		"by company or sector and a recency window in days."
}

func (t *SentimentTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"company": map[string]any{"type": "string"},
				"sector":  map[string]any{"type": "string"},
				"days": map[string]any{
					"type":        "integer",
					"description": "Look-back window in days; omit for all history",
				},
			},
		},
	}
}

func (t *SentimentTool) Invoke(ctx context.Context, args json.RawMessage) string {
	var a SentimentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Sprintf("Sentiment analysis error: invalid arguments: %v", err)
	}

	conditions := []string{}
	if a.Company != "" {
		conditions = append(conditions, fmt.Sprintf("company = '%s'", escapeSQLString(a.Company)))
	}
	if a.Sector != "" {
		conditions = append(conditions, fmt.Sprintf("sector = '%s'", escapeSQLString(a.Sector)))
	}
	if a.Days > 0 {
		conditions = append(conditions, fmt.Sprintf("date >= date('now', '-%d days')", a.Days))
	}

	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT sentiment, COUNT(*) AS count, AVG(sentiment_score) AS avg_score
FROM financial_news
WHERE %s
GROUP BY sentiment
ORDER BY count DESC`, where)

	return "Market sentiment analysis:\n" + t.store.Query(ctx, query)
}

// escapeSQLString doubles single quotes; the filter values end up inside a
// quoted SQL literal handed to the read-only query surface.
func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

var _ Tool = (*SentimentTool)(nil)
