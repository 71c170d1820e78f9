package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Exchange is one completed question/answer pair.
type Exchange struct {
	Question string
	Answer   string
}

// Store keeps per-session conversation context for the generator. History
// returns the rendered recent exchanges, oldest first; "" means a fresh
// session.
type Store interface {
	History(ctx context.Context, sessionID string) (string, error)
	AddExchange(ctx context.Context, sessionID, question, answer string) error
}

// Render formats exchanges the way the generator's system prompt expects.
func Render(exchanges []Exchange) string {
	lines := make([]string, 0, len(exchanges)*2)
	for _, e := range exchanges {
		lines = append(lines, "User: "+e.Question, "Assistant: "+e.Answer)
	}
	return strings.Join(lines, "\n")
}

// Memory is an in-process Store bounded to the most recent maxHistory
// exchanges per session. Older exchanges fall off the front.
type Memory struct {
	mu         sync.Mutex
	maxHistory int
	sessions   map[string][]Exchange
}

var _ Store = (*Memory)(nil)

func NewMemory(maxHistory int) *Memory {
	if maxHistory <= 0 {
		maxHistory = 2
	}
	return &Memory{
		maxHistory: maxHistory,
		sessions:   make(map[string][]Exchange),
	}
}

func (m *Memory) History(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Render(m.sessions[sessionID]), nil
}

func (m *Memory) AddExchange(ctx context.Context, sessionID, question, answer string) error {
	if sessionID == "" {
		return fmt.Errorf("session id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	exchanges := append(m.sessions[sessionID], Exchange{Question: question, Answer: answer})
	if len(exchanges) > m.maxHistory {
		exchanges = exchanges[len(exchanges)-m.maxHistory:]
	}
	m.sessions[sessionID] = exchanges
	return nil
}
