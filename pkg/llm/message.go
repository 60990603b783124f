// Package llm defines the provider-agnostic chat contract used by the agent.
//
// A Backend is a chat completion provider. Backends are interchangeable: the
// agent only depends on this package, never on a concrete provider client.
package llm

// Message roles understood by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCallID links a RoleTool message back to the tool call it answers.
	// Empty for every other role.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolCalls records the calls an assistant message requested. Kept so a
	// tool-capable backend can replay the exchange on the next step.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewToolResult creates a RoleTool message answering the given tool call.
func NewToolResult(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// SystemPrompt prepends a system message to the given messages.
func SystemPrompt(system string, msgs []Message) []Message {
	if system == "" {
		return msgs
	}
	out := make([]Message, 0, len(msgs)+1)
	out = append(out, Message{Role: RoleSystem, Content: system})
	return append(out, msgs...)
}
