package testutils

import (
	"context"
	"fmt"

	"github.com/finsightco/finsight/pkg/llm"
)

// MockBackend is a plain chat backend returning canned responses.
type MockBackend struct {
	// Response is returned from every chat call.
	Response string

	// Unavailable makes the backend report unavailable and error on use.
	Unavailable bool

	// Calls accumulates the message histories passed to Chat.
	Calls [][]llm.Message
}

func NewMockBackend(response string) *MockBackend {
	return &MockBackend{Response: response}
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Available() bool { return !m.Unavailable }

func (m *MockBackend) Chat(_ context.Context, msgs []llm.Message) (string, error) {
	if m.Unavailable {
		return "", llm.ErrUnavailable
	}
	m.Calls = append(m.Calls, msgs)
	return m.Response, nil
}

func (m *MockBackend) ChatWithSystem(ctx context.Context, system, user string) (string, error) {
	return m.Chat(ctx, []llm.Message{
		llm.NewMessage(llm.RoleSystem, system),
		llm.NewMessage(llm.RoleUser, user),
	})
}

var _ llm.Backend = (*MockBackend)(nil)

// MockToolBackend is a tool-capable backend that replays a scripted sequence
// of decisions, then keeps returning the last one.
type MockToolBackend struct {
	MockBackend

	// Decisions is consumed one per ChatWithTools call.
	Decisions []*llm.ToolDecision

	// ToolCalls counts ChatWithTools invocations.
	ToolCalls int
}

func NewMockToolBackend(decisions ...*llm.ToolDecision) *MockToolBackend {
	return &MockToolBackend{Decisions: decisions}
}

func (m *MockToolBackend) ChatWithTools(_ context.Context, _ string, msgs []llm.Message, _ []llm.ToolSpec) (*llm.ToolDecision, error) {
	if m.Unavailable {
		return nil, llm.ErrUnavailable
	}
	m.Calls = append(m.Calls, msgs)

	if len(m.Decisions) == 0 {
		return nil, fmt.Errorf("mock tool backend has no scripted decisions")
	}
	i := m.ToolCalls
	if i >= len(m.Decisions) {
		i = len(m.Decisions) - 1
	}
	m.ToolCalls++
	return m.Decisions[i], nil
}

var _ llm.ToolCapable = (*MockToolBackend)(nil)
