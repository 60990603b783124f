package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var (
	analyzeToolName    = "analyze"
	analyzeDescription = "Run a financial analysis query through the agent. Uses retrieval over recent market news and the financial tool set, and returns the agent's answer."
)

// AnalyzeInput represents the input arguments for the analyze tool.
type AnalyzeInput struct {
	Query string `json:"query" jsonschema:"the financial question to analyze"`
}

// AnalyzeOutput represents the output of the analyze tool.
type AnalyzeOutput struct {
	Query       string `json:"query"`
	Response    string `json:"response"`
	ContextUsed bool   `json:"context_used"`
	ToolCalls   int    `json:"tool_calls"`
}

// handleAnalyze processes an analyze request.
func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP analyze request",
		zap.String("query", input.Query),
	)

	if input.Query == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "query is required"},
			},
		}, AnalyzeOutput{}, nil
	}

	result, err := s.config.Agent.Analyze(ctx, input.Query)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Analysis failed: %v", err)},
			},
		}, AnalyzeOutput{}, nil
	}

	output := AnalyzeOutput{
		Query:       result.Query,
		Response:    result.Response,
		ContextUsed: result.ContextUsed,
		ToolCalls:   result.ToolCalls,
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal analyze output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize result: %v", err)},
			},
		}, AnalyzeOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
