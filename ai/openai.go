package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"chat-memory/domain/memory"
)

// Config holds the chat-completion backend settings. BaseURL may point at
// any OpenAI-compatible endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// OpenAIAssistant implements Assistant against a chat-completion API.
type OpenAIAssistant struct {
	client *openai.Client
	log    *slog.Logger
	cfg    Config
}

func NewOpenAIAssistant(cfg Config, log *slog.Logger) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	return &OpenAIAssistant{
		client: openai.NewClientWithConfig(clientConfig),
		log:    log,
		cfg:    cfg,
	}, nil
}

func (a *OpenAIAssistant) Answer(ctx context.Context, user string, history []memory.ContextEntry, query string) (string, error) {
	turns := buildTurns(user, history, query)

	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, turn := range turns {
		messages[i] = openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content}
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	a.log.Debug("Assistant replied", "model", a.cfg.Model, "turns", len(turns))
	return ClampLine(resp.Choices[0].Message.Content, MaxLineLength), nil
}
