// Package history keeps a bounded conversation window. The "last N turns"
// contract is an invariant of the structure itself, not something callers
// truncate ad hoc.
package history

import (
	"sync"

	"github.com/finsightco/finsight/pkg/llm"
)

// DefaultLimit is the default number of messages retained.
const DefaultLimit = 10

// History is a bounded, concurrency-safe message window. Appending past the
// limit evicts the oldest messages.
type History struct {
	mu       sync.Mutex
	limit    int
	messages []llm.Message
}

// New creates a history retaining at most limit messages. Non-positive
// limits fall back to DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Append records messages, evicting the oldest past the limit.
func (h *History) Append(msgs ...llm.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msgs...)
	if excess := len(h.messages) - h.limit; excess > 0 {
		h.messages = append([]llm.Message(nil), h.messages[excess:]...)
	}
}

// AppendTurn records one user/assistant exchange.
func (h *History) AppendTurn(userText, assistantText string) {
	h.Append(
		llm.NewMessage(llm.RoleUser, userText),
		llm.NewMessage(llm.RoleAssistant, assistantText),
	)
}

// Messages returns a copy of the retained window, oldest first.
func (h *History) Messages() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]llm.Message(nil), h.messages...)
}

// Window returns a copy of at most the last n messages.
func (h *History) Window(n int) []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 {
		return nil
	}
	if n > len(h.messages) {
		n = len(h.messages)
	}
	return append([]llm.Message(nil), h.messages[len(h.messages)-n:]...)
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear drops all retained messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
