package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/tools"
)

var (
	sentimentToolName    = "market_sentiment"
	sentimentDescription = "Analyze market sentiment from financial news, optionally filtered by company or sector and a recency window in days."
)

// SentimentInput represents the input arguments for the market_sentiment tool.
type SentimentInput struct {
	Company string `json:"company,omitempty" jsonschema:"filter news to a single company"`
	Sector  string `json:"sector,omitempty" jsonschema:"filter news to a single sector"`
	Days    int    `json:"days,omitempty" jsonschema:"look-back window in days, omit for all history"`
}

// SentimentOutput represents the output of the market_sentiment tool.
type SentimentOutput struct {
	Report string `json:"report"`
}

// handleSentiment processes a sentiment aggregation request.
func (s *Server) handleSentiment(ctx context.Context, req *mcp.CallToolRequest, input SentimentInput) (*mcp.CallToolResult, SentimentOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP sentiment request",
		zap.String("company", input.Company),
		zap.String("sector", input.Sector),
		zap.Int("days", input.Days),
	)

	args, err := json.Marshal(tools.SentimentArgs{
		Company: input.Company,
		Sector:  input.Sector,
		Days:    input.Days,
	})
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to encode arguments: %v", err)},
			},
		}, SentimentOutput{}, nil
	}

	report := s.sentiment.Invoke(ctx, args)
	output := SentimentOutput{Report: report}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: report},
		},
	}, output, nil
}
