// Package tools is the agent's tool registry: a closed set of named tools
// with typed argument records, each returning plain text. Tool failures are
// converted to descriptive result strings and never propagate into the
// agent loop.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finsightco/finsight/pkg/llm"
)

// Tool names form a closed set; dispatch is by exhaustive switch.
const (
	NameDatabaseQuery   = "database_query"
	NameWebSearch       = "web_search"
	NameCalculator      = "calculator"
	NameRatioCalculator = "ratio_calculator"
	NameMarketSentiment = "market_sentiment"
)

// Tool is one callable capability exposed to the model.
type Tool interface {
	Name() string
	Description() string

	// Spec describes the tool's argument schema for LLM tool selection.
	Spec() llm.ToolSpec

	// Invoke runs the tool. Failures come back as descriptive strings.
	Invoke(ctx context.Context, args json.RawMessage) string
}

// Registry holds the fixed, ordered tool list.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry creates a registry over the given tools, preserving order.
func NewRegistry(tools ...Tool) *Registry {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return &Registry{tools: tools, byName: byName}
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	return append([]Tool(nil), r.tools...)
}

// Specs returns the tool specs in registration order, for handing to a
// tool-capable backend.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.tools))
	for _, t := range r.tools {
		specs = append(specs, t.Spec())
	}
	return specs
}

// Invoke dispatches a tool call by name. An unknown name yields a
// descriptive string, not an error.
func (r *Registry) Invoke(ctx context.Context, call llm.ToolCall) string {
	t, ok := r.byName[call.Name]
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", call.Name)
	}
	return t.Invoke(ctx, call.Arguments)
}
