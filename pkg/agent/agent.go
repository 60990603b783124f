// Package agent runs the analysis loop: retrieve context, augment the query,
// let the model decide between answering and calling tools, and fall back to
// plain chat completion when the tool path is unavailable.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/embeddings"
	"github.com/finsightco/finsight/pkg/eventstream"
	"github.com/finsightco/finsight/pkg/eventstream/nop"
	"github.com/finsightco/finsight/pkg/history"
	"github.com/finsightco/finsight/pkg/llm"
	"github.com/finsightco/finsight/pkg/tools"
	"github.com/finsightco/finsight/pkg/utils"
	"github.com/finsightco/finsight/pkg/vector"
)

const (
	// DefaultRetrievalK is how many chunks retrieval pulls into context.
	DefaultRetrievalK = 5

	// DefaultMaxIterations bounds the tool-invocation loop.
	DefaultMaxIterations = 10

	// DefaultHistoryWindow is how many past messages the model sees.
	DefaultHistoryWindow = 10

	// NoBackendResponse is returned when no backend can serve the query.
	NoBackendResponse = "No LLM backend available"
)

const systemPrompt = `You are a Senior Financial Analyst AI with access to financial databases and tools.

Provide clear, structured financial analysis. Use specific data from your
tools to support your insights, validate data consistency before drawing
conclusions, and focus on factual analysis over speculation. Flag data gaps
and uncertainties explicitly.`

const fallbackSystemPrompt = "You are a financial analysis expert."

// Config holds the agent's collaborators. Primary and Secondary are tried in
// order; either may be nil or unavailable without crashing the agent.
type Config struct {
	Primary   llm.Backend
	Secondary llm.Backend

	// Embedder and Index enable retrieval. Both nil disables RAG.
	Embedder embeddings.Embedder
	Index    vector.Driver

	// Registry enables the tool loop when Primary is tool-capable.
	Registry *tools.Registry

	// History is the shared conversation window. Required.
	History *history.History

	// Publisher receives analysis-completed events. Defaults to nop.
	Publisher eventstream.Publisher

	Logger *zap.Logger

	RetrievalK    int
	MaxIterations int
	HistoryWindow int

	EnableRAG   bool
	EnableTools bool
}

// Agent answers financial queries. Shared state (index, store, registry) is
// read-only during a query; only the history mutates, under its own lock.
type Agent struct {
	cfg       Config
	publisher eventstream.Publisher
	logger    *zap.Logger
}

// Result is the outcome of one analysis.
type Result struct {
	Query       string
	Response    string
	Context     string
	ContextUsed bool
	ToolCalls   int
}

// New creates an agent. Missing backends degrade features instead of
// failing construction.
func New(cfg Config) (*Agent, error) {
	if cfg.History == nil {
		return nil, fmt.Errorf("agent: history is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RetrievalK <= 0 {
		cfg.RetrievalK = DefaultRetrievalK
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	return &Agent{cfg: cfg, publisher: publisher, logger: cfg.Logger}, nil
}

// Options override the configured RAG and tool toggles for a single query.
// A nil field keeps the configured behavior.
type Options struct {
	UseRAG   *bool
	UseTools *bool
}

// Analyze answers one query with the configured toggles.
func (a *Agent) Analyze(ctx context.Context, query string) (*Result, error) {
	return a.AnalyzeWith(ctx, query, Options{})
}

// AnalyzeWith answers one query, walking retrieve → augment → decide →
// [invoke-tool → decide]* → respond. Tool and backend failures degrade to a
// best-effort response; only context cancellation aborts.
func (a *Agent) AnalyzeWith(ctx context.Context, query string, opts Options) (*Result, error) {
	started := time.Now()

	a.logger.Debug("analyzing query", zap.String("query", utils.Truncate(query, 120)))

	result := &Result{Query: query}

	if a.ragEnabled(opts) {
		result.Context = a.retrieve(ctx, query)
		result.ContextUsed = result.Context != ""
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	augmented := a.augment(query, result.Context)

	response, toolCalls := a.decide(ctx, augmented, opts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.ToolCalls = toolCalls

	if response == "" {
		response = a.fallback(ctx, augmented)
	}
	result.Response = response

	a.cfg.History.AppendTurn(query, response)
	a.publish(ctx, result, started)

	return result, nil
}

func (a *Agent) ragEnabled(opts Options) bool {
	enabled := a.cfg.EnableRAG
	if opts.UseRAG != nil {
		enabled = *opts.UseRAG
	}
	return enabled && a.cfg.Embedder != nil && a.cfg.Index != nil
}

func (a *Agent) toolLoopEnabled(opts Options) (llm.ToolCapable, bool) {
	enabled := a.cfg.EnableTools
	if opts.UseTools != nil {
		enabled = *opts.UseTools
	}
	if !enabled || a.cfg.Registry == nil {
		return nil, false
	}
	tc, ok := a.cfg.Primary.(llm.ToolCapable)
	if !ok || !tc.Available() {
		return nil, false
	}
	return tc, true
}

// retrieve embeds the query and assembles the retrieved chunks into a
// numbered context block. Any failure yields an empty context, never an
// error: retrieval is best effort.
func (a *Agent) retrieve(ctx context.Context, query string) string {
	embedding, err := a.cfg.Embedder.Embed(ctx, query)
	if err != nil {
		a.logger.Warn("query embedding failed", zap.Error(err))
		return ""
	}

	results, err := a.cfg.Index.Query(ctx, embedding, a.cfg.RetrievalK)
	if err != nil {
		if !errors.Is(err, vector.ErrNotInitialized) {
			a.logger.Warn("context retrieval failed", zap.Error(err))
		}
		return ""
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		var meta []string
		if company, ok := r.Metadata["company"]; ok {
			meta = append(meta, "Company: "+company)
		}
		if date, ok := r.Metadata["date"]; ok {
			meta = append(meta, "Date: "+date)
		}
		parts = append(parts, fmt.Sprintf("[%d] %s (%s)", i+1, r.Content, strings.Join(meta, " | ")))
	}
	return strings.Join(parts, "\n\n")
}

// augment wraps the query with the retrieved context. An empty context
// passes the query through unmodified.
func (a *Agent) augment(query, contextBlock string) string {
	if contextBlock == "" {
		return query
	}
	return fmt.Sprintf(`User Question: %s

Relevant Context:
%s

Please analyze this query using the provided context and your financial expertise.`, query, contextBlock)
}

// decide runs the tool loop: the model either answers or requests a tool
// call, whose result feeds the next step. The iteration bound forces an
// explicit notice instead of looping forever. Empty return means the tool
// path was unavailable or failed and the caller should fall back.
func (a *Agent) decide(ctx context.Context, augmented string, opts Options) (string, int) {
	tc, ok := a.toolLoopEnabled(opts)
	if !ok {
		return "", 0
	}

	working := append(a.cfg.History.Window(a.cfg.HistoryWindow),
		llm.NewMessage(llm.RoleUser, augmented))
	specs := a.cfg.Registry.Specs()

	toolCalls := 0
	for iter := 0; iter < a.cfg.MaxIterations; iter++ {
		if ctx.Err() != nil {
			return "", toolCalls
		}

		decision, err := tc.ChatWithTools(ctx, systemPrompt, working, specs)
		if err != nil {
			a.logger.Warn("tool-capable backend failed, falling back",
				zap.String("backend", tc.Name()),
				zap.Error(err),
			)
			return "", toolCalls
		}

		if decision.ToolCall == nil {
			if decision.Text == "" {
				return "", toolCalls
			}
			return decision.Text, toolCalls
		}

		call := *decision.ToolCall
		output := a.cfg.Registry.Invoke(ctx, call)
		toolCalls++

		a.logger.Debug("tool invoked",
			zap.String("tool", call.Name),
			zap.Int("iteration", iter+1),
		)

		working = append(working,
			llm.Message{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{call}},
			llm.NewToolResult(call.ID, output),
		)
	}

	a.logger.Warn("tool iteration limit reached", zap.Int("limit", a.cfg.MaxIterations))
	return fmt.Sprintf("Maximum tool iterations (%d) reached before the analysis converged. "+
		"The gathered tool results may be incomplete.", a.cfg.MaxIterations), toolCalls
}

// fallback tries a direct single-turn completion against the configured
// backends in priority order.
func (a *Agent) fallback(ctx context.Context, augmented string) string {
	for _, backend := range []llm.Backend{a.cfg.Primary, a.cfg.Secondary} {
		if backend == nil || !backend.Available() {
			continue
		}
		response, err := backend.ChatWithSystem(ctx, fallbackSystemPrompt, augmented)
		if err != nil {
			a.logger.Warn("fallback backend failed",
				zap.String("backend", backend.Name()),
				zap.Error(err),
			)
			continue
		}
		if response != "" {
			return response
		}
	}
	return NoBackendResponse
}

// publish emits the analysis-completed event, best effort.
func (a *Agent) publish(ctx context.Context, result *Result, started time.Time) {
	completed := time.Now()

	backend := ""
	if a.cfg.Primary != nil && a.cfg.Primary.Available() {
		backend = a.cfg.Primary.Name()
	} else if a.cfg.Secondary != nil && a.cfg.Secondary.Available() {
		backend = a.cfg.Secondary.Name()
	}

	event := &eventstream.AnalysisCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeAnalysisCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     completed,
		Source: eventstream.EventSource{
			Service: "finsight",
			Backend: backend,
		},
		Analysis: eventstream.AnalysisMeta{
			Query:          result.Query,
			ResponseLength: len(result.Response),
			ContextUsed:    result.ContextUsed,
			ToolCalls:      result.ToolCalls,
			StartedAt:      started,
			CompletedAt:    completed,
			DurationMs:     completed.Sub(started).Milliseconds(),
		},
	}

	if err := a.publisher.PublishAnalysis(ctx, event); err != nil {
		a.logger.Warn("publishing analysis event failed", zap.Error(err))
	}
}
