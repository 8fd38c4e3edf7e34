// Package llm generates interaction responses from synthesized memory
// context. The model is a black-box text-to-text service; when no
// provider is configured, a deterministic template response keeps the
// interaction cycle working.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/norbu09/memtier/internal/config"
)

// Generator produces a response to a query given formatted memory
// context.
type Generator interface {
	Respond(ctx context.Context, query, memoryContext string) (string, error)
	Model() string
}

// NewFromConfig creates the configured generator. Provider "none"
// yields the template generator.
func NewFromConfig(cfg config.Config) (Generator, error) {
	if cfg.LLMProvider == config.ProviderNone || cfg.LLMProvider == "" {
		return &Template{}, nil
	}
	return NewModel(cfg)
}

// Model wraps a langchaingo LLM for response generation.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ Generator = (*Model)(nil)

// NewModel creates an LLM-backed generator based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// Respond answers the query grounded in the retrieved memory context.
func (m *Model) Respond(ctx context.Context, query, memoryContext string) (string, error) {
	systemPrompt := `You are a conversational agent with long-term memory. Answer the user grounded in the provided memory context.
If the memory context is empty or irrelevant, answer from general knowledge and say you have no stored memories on the topic.
Be concise.`

	userPrompt := fmt.Sprintf(`Memory context:
%s

User: %s

Response:`, memoryContext, query)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// Template is the no-LLM generator: a deterministic response that
// reflects the retrieved context back. Useful for tests and for
// deployments that only want the memory side of the engine.
type Template struct{}

var _ Generator = (*Template)(nil)

func (Template) Model() string {
	return "template"
}

func (Template) Respond(_ context.Context, query, memoryContext string) (string, error) {
	if strings.TrimSpace(memoryContext) == "" {
		return fmt.Sprintf("I have no stored memories related to %q yet.", query), nil
	}
	return fmt.Sprintf("Based on what I remember:\n%s", memoryContext), nil
}
