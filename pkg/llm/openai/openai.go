// Package openai implements pkg/llm's Backend client for OpenAI's chat
// completion API, including the tool-calling capability.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finsightco/finsight/pkg/llm"
)

const (
	// Name identifies this backend in status reports.
	Name = "openai"

	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultTemperature keeps financial answers conservative.
	DefaultTemperature = 0.1
)

// Client is an OpenAI chat backend. A client constructed without an API key
// reports unavailable instead of failing; the process keeps running degraded.
type Client struct {
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	httpClient  *http.Client
}

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	// APIKey authenticates against the OpenAI API. Empty means the backend
	// is constructed unavailable.
	APIKey string

	// BaseURL overrides the OpenAI API URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel.
	Model string

	// Temperature defaults to DefaultTemperature when zero.
	Temperature float64
}

// NewClient creates an OpenAI chat client. It never fails: a missing key
// yields an unavailable backend, reported via Available.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	return &Client{
		baseURL:     baseURL,
		model:       model,
		apiKey:      cfg.APIKey,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) Name() string { return Name }

// Available reports whether the client holds a credential.
func (c *Client) Available() bool { return c.apiKey != "" }

// wire types for /v1/chat/completions

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function llm.ToolSpec `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Tools       []wireTool    `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends the message history and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, msgs []llm.Message) (string, error) {
	resp, err := c.complete(ctx, msgs, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// ChatWithSystem wraps a two-message history.
func (c *Client) ChatWithSystem(ctx context.Context, system, user string) (string, error) {
	return c.Chat(ctx, []llm.Message{
		llm.NewMessage(llm.RoleSystem, system),
		llm.NewMessage(llm.RoleUser, user),
	})
}

// ChatWithTools sends the working messages plus tool specs and returns the
// model's decision: a final answer or a requested tool call.
func (c *Client) ChatWithTools(ctx context.Context, system string, msgs []llm.Message, tools []llm.ToolSpec) (*llm.ToolDecision, error) {
	resp, err := c.complete(ctx, llm.SystemPrompt(system, msgs), tools)
	if err != nil {
		return nil, err
	}

	if len(resp.ToolCalls) > 0 {
		call := resp.ToolCalls[0]
		return &llm.ToolDecision{
			ToolCall: &llm.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: json.RawMessage(call.Function.Arguments),
			},
		}, nil
	}
	return &llm.ToolDecision{Text: resp.Content}, nil
}

func (c *Client) complete(ctx context.Context, msgs []llm.Message, tools []llm.ToolSpec) (*chatMessage, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: openai has no API key", llm.ErrUnavailable)
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    toWireMessages(msgs),
		Temperature: c.temperature,
	}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, wireTool{Type: "function", Function: t})
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	return &chatResp.Choices[0].Message, nil
}

func toWireMessages(msgs []llm.Message) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		wm := chatMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, call := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   call.ID,
				Type: "function",
				Function: wireFunction{
					Name:      call.Name,
					Arguments: string(call.Arguments),
				},
			})
		}
		out = append(out, wm)
	}
	return out
}

var _ llm.ToolCapable = (*Client)(nil)
