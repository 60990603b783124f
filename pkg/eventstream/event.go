// Package eventstream defines the transport-neutral analysis event and the
// Publisher contract for emitting it to a stream backend.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeAnalysisCompleted is emitted after an analysis finishes.
	EventTypeAnalysisCompleted = "finsight.analysis.completed"
)

// AnalysisCompletedEvent is a transport-neutral event payload for one
// completed analysis.
type AnalysisCompletedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Source        EventSource  `json:"source"`
	Analysis      AnalysisMeta `json:"analysis"`
}

// EventSource identifies where the analysis ran.
type EventSource struct {
	Service string `json:"service"`
	Backend string `json:"backend,omitempty"`
}

// AnalysisMeta captures the observable outcome of the analysis.
type AnalysisMeta struct {
	Query          string    `json:"query"`
	ResponseLength int       `json:"response_length"`
	ContextUsed    bool      `json:"context_used"`
	ToolCalls      int       `json:"tool_calls"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	DurationMs     int64     `json:"duration_ms"`
}
