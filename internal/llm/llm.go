package llm

import (
	"context"
	"encoding/json"
)

// ContentBlock is one element of a message body. Type selects which fields
// are meaningful: "text" carries Text; "tool_use" carries ID, Name and
// Input; "tool_result" carries ToolUseID and Content.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

// Message is one conversation turn, user or assistant.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ToolDefinition advertises a callable tool to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// MessagesRequest is one model invocation. Tools and ToolChoice are omitted
// on follow-up calls so the model cannot request a second search.
type MessagesRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	System      string           `json:"system,omitempty"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  map[string]any   `json:"tool_choice,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
}

// MessagesResponse is the model's reply. StopReason "tool_use" means the
// content holds at least one tool_use block to execute.
type MessagesResponse struct {
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
}

// FirstText returns the first text block's content, or "" when the reply
// carries none.
func (r MessagesResponse) FirstText() string {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// ToolUses returns the reply's tool invocation requests in order.
func (r MessagesResponse) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, block := range r.Content {
		if block.Type == "tool_use" {
			uses = append(uses, block)
		}
	}
	return uses
}

// Client sends one messages request and returns the model's reply.
type Client interface {
	CreateMessage(ctx context.Context, req MessagesRequest) (MessagesResponse, error)
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: "text", Text: text}}}
}
