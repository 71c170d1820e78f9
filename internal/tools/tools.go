package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"medlit/internal/llm"
	"medlit/internal/models"
)

// Result is one tool execution's outcome: the text handed back to the model
// and the citable sources backing it. Sources ride in the result so callers
// never dig into tool state after the fact.
type Result struct {
	Text    string
	Sources []models.Source
}

// Tool is a callable the model may invoke during a conversation.
type Tool interface {
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, input json.RawMessage) (Result, error)
}

// Registry holds the tools offered to the model, keyed by name.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
	return nil
}

// Definitions returns every registered tool definition in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches to the named tool. An unknown name is reported to the
// model as result text, not raised: the model asked for it, the model gets
// told.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (Result, error) {
	tool, ok := r.tools[name]
	if !ok {
		return Result{Text: fmt.Sprintf("Tool '%s' not found", name)}, nil
	}
	return tool.Execute(ctx, input)
}
