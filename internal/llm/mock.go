package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient replays a scripted sequence of replies and records every
// request it saw. Step n returns reply n; running past the script is an
// error. Tests use it to drive the tool round-trip deterministically.
type MockClient struct {
	mu       sync.Mutex
	Replies  []MessagesResponse
	Errs     []error
	Requests []MessagesRequest
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) CreateMessage(ctx context.Context, req MessagesRequest) (MessagesResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	step := len(m.Requests)
	m.Requests = append(m.Requests, req)
	if step < len(m.Errs) && m.Errs[step] != nil {
		return MessagesResponse{}, m.Errs[step]
	}
	if step >= len(m.Replies) {
		return MessagesResponse{}, fmt.Errorf("mock client: unexpected call %d", step+1)
	}
	return m.Replies[step], nil
}

// TextReply is a plain end-turn response with one text block.
func TextReply(text string) MessagesResponse {
	return MessagesResponse{
		StopReason: "end_turn",
		Content:    []ContentBlock{{Type: "text", Text: text}},
	}
}

// ToolUseReply is a tool-invocation response with one tool_use block.
func ToolUseReply(id, name string, input []byte) MessagesResponse {
	return MessagesResponse{
		StopReason: "tool_use",
		Content:    []ContentBlock{{Type: "tool_use", ID: id, Name: name, Input: input}},
	}
}
