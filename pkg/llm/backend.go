package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrUnavailable is returned when a backend cannot be reached or was
	// never successfully initialized. It degrades the feature, it never
	// crashes the process.
	ErrUnavailable = errors.New("llm backend unavailable")

	// ErrMissingCredential is returned by backend constructors when a
	// required credential is absent.
	ErrMissingCredential = errors.New("missing credential")
)

// Backend is a chat completion provider.
type Backend interface {
	// Name identifies the backend (e.g. "openai", "ollama").
	Name() string

	// Available reports whether the backend can currently serve requests.
	// Callers should inspect this before use; an unavailable backend
	// returns ErrUnavailable from Chat.
	Available() bool

	// Chat sends the full message history and returns the assistant's reply.
	Chat(ctx context.Context, msgs []Message) (string, error)

	// ChatWithSystem is a convenience wrapping a two-message history.
	ChatWithSystem(ctx context.Context, system, user string) (string, error)
}

// ToolSpec describes a callable tool to the model: a name, a natural-language
// description used for tool selection, and a JSON schema for the arguments.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall is a model-requested tool invocation. Arguments is the raw JSON
// object the model produced; decoding into the tool's typed argument struct
// happens at dispatch.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDecision is the outcome of one reasoning step: either the model's final
// text answer, or a tool call it wants executed before answering.
type ToolDecision struct {
	// Text is the assistant's answer. Only meaningful when ToolCall is nil.
	Text string

	// ToolCall, when non-nil, requests a tool invocation. The tool result
	// must be appended to the working messages before the next step.
	ToolCall *ToolCall
}

// ToolCapable is an optional Backend capability for models that can request
// tool invocations. Tool selection is a black-box decision made by the model;
// the caller only dispatches what comes back.
type ToolCapable interface {
	Backend

	// ChatWithTools sends the working messages plus tool specs and returns
	// the model's decision for this step.
	ChatWithTools(ctx context.Context, system string, msgs []Message, tools []ToolSpec) (*ToolDecision, error)
}

// ErrorResponse is the JSON error body shape returned by the HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
}
