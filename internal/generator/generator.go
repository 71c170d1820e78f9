package generator

import (
	"context"
	"fmt"
	"log"

	"medlit/internal/llm"
	"medlit/internal/models"
	"medlit/internal/tools"
)

const systemPrompt = `You are an AI assistant specialized in medical research literature with access to a comprehensive database of peer-reviewed medical research papers.

**IMPORTANT MEDICAL DISCLAIMER:**
- You provide information from medical research for educational purposes only
- Your responses are NOT medical advice and should NOT replace consultation with qualified healthcare professionals
- Always remind users to consult with their healthcare provider for medical decisions

Search Tool Usage:
- Use the search tool for questions about medical conditions, treatments, clinical research, or health topics covered in the literature
- **One search per query maximum**
- Synthesize research findings into clear, evidence-based summaries
- If search yields no results, state this clearly and explain the limitation
- You may optionally use filters (topic, paper_type, year) when appropriate for the query

Response Protocol:
- **Medical research questions**: Search the literature first, then provide evidence-based answer
- **General health questions**: Use existing knowledge but search if specific evidence is requested
- **Treatment questions**: Always cite research and include publication years
- **No meta-commentary**:
  - Provide direct, evidence-based answers
  - Do not mention "based on the search results" or explain your search process
  - Focus on the medical evidence and findings

All responses must be:
1. **Evidence-based** - Ground answers in research findings with appropriate context
2. **Clear and accessible** - Use plain language while maintaining medical accuracy
3. **Balanced** - Present multiple perspectives when research shows varying results
4. **Contextual** - Include relevant limitations, study types, and publication years
5. **Brief and focused** - Get to the key findings quickly

When citing research, naturally incorporate publication year context (e.g., "Recent studies from 2023 show...") without being verbose.
`

const fallbackAnswer = "I apologize, but I encountered an issue generating a response. Please try again."

const defaultMaxTokens = 2048

// Generator turns a question plus conversation history into a grounded
// answer. The model gets one tool round-trip at most: the follow-up call
// carries no tool definitions, so a second search is structurally
// impossible regardless of what the model asks for.
type Generator struct {
	client    llm.Client
	model     string
	registry  *tools.Registry
	maxTokens int
}

func New(client llm.Client, model string, registry *tools.Registry) *Generator {
	return &Generator{
		client:    client,
		model:     model,
		registry:  registry,
		maxTokens: defaultMaxTokens,
	}
}

// Answer runs the conversation loop for one question. History is the
// rendered prior exchanges, appended to the system prompt rather than
// replayed as turns. Returned sources come from whatever tools ran; a
// direct answer carries none.
func (g *Generator) Answer(ctx context.Context, query, history string) (string, []models.Source, error) {
	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	req := llm.MessagesRequest{
		Model:      g.model,
		MaxTokens:  g.maxTokens,
		System:     system,
		Messages:   []llm.Message{llm.TextMessage("user", query)},
		Tools:      g.registry.Definitions(),
		ToolChoice: map[string]any{"type": "auto"},
	}
	resp, err := g.client.CreateMessage(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("generate response: %w", err)
	}

	if resp.StopReason != "tool_use" {
		return resp.FirstText(), nil, nil
	}
	return g.finishWithTools(ctx, req, resp)
}

// finishWithTools executes the requested tool calls, folds the results into
// the conversation and asks the model to conclude. The final call retries
// once on failure or empty content before giving up with a fixed apology.
func (g *Generator) finishWithTools(ctx context.Context, req llm.MessagesRequest, resp llm.MessagesResponse) (string, []models.Source, error) {
	messages := append([]llm.Message{}, req.Messages...)
	messages = append(messages, llm.Message{Role: "assistant", Content: resp.Content})

	var resultBlocks []llm.ContentBlock
	var sources []models.Source
	for _, use := range resp.ToolUses() {
		result, err := g.registry.Execute(ctx, use.Name, use.Input)
		if err != nil {
			return "", nil, fmt.Errorf("execute tool %s: %w", use.Name, err)
		}
		resultBlocks = append(resultBlocks, llm.ContentBlock{
			Type:      "tool_result",
			ToolUseID: use.ID,
			Content:   result.Text,
		})
		sources = append(sources, result.Sources...)
	}
	if len(resultBlocks) > 0 {
		messages = append(messages, llm.Message{Role: "user", Content: resultBlocks})
	}

	final := llm.MessagesRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    req.System,
		Messages:  messages,
	}

	const maxRetries = 1
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := g.client.CreateMessage(ctx, final)
		if err != nil {
			if attempt < maxRetries {
				log.Printf("final response attempt %d failed: %v, retrying", attempt+1, err)
				continue
			}
			log.Printf("final response failed after %d attempts: %v", maxRetries+1, err)
			return fallbackAnswer, sources, nil
		}
		if text := resp.FirstText(); text != "" {
			return text, sources, nil
		}
		if attempt < maxRetries {
			log.Printf("final response attempt %d returned no text, retrying", attempt+1)
		}
	}
	return fallbackAnswer, sources, nil
}
