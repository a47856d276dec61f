package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"

	// Drafts must read the note the same way every time.
	draftTemperature  = 0
	reviewTemperature = 0.4
)

// generator is the part of a langchaingo model the calendar uses.
type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// OllamaClient talks to a local Ollama server. Event drafts are requested
// in Ollama's JSON mode; reviews are plain text.
type OllamaClient struct {
	llm     generator
	model   string
	baseURL string
}

// NewOllamaClient creates a client for model served at baseURL, or at the
// default local address when baseURL is empty. No request is made until
// the first chat.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("ollama model is required")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client for %s: %w", baseURL, err)
	}
	return &OllamaClient{llm: llm, model: model, baseURL: baseURL}, nil
}

// Chat returns a free-text reply, used for workload reviews.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.generate(ctx, messages, llms.WithTemperature(reviewTemperature))
}

// ChatJSON reads an event draft from the model into result.
func (c *OllamaClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	reply, err := c.generate(ctx, messages,
		llms.WithJSONMode(),
		llms.WithTemperature(draftTemperature),
	)
	if err != nil {
		return err
	}
	return decodeReply("ollama", reply, result)
}

func (c *OllamaClient) generate(ctx context.Context, messages []Message, options ...llms.CallOption) (string, error) {
	options = append(options, llms.WithModel(c.model))
	resp, err := c.llm.GenerateContent(ctx, toContent(messages), options...)
	if err != nil {
		return "", fmt.Errorf("ollama %s at %s: %w", c.model, c.baseURL, err)
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", fmt.Errorf("ollama %s: %w", c.model, ErrNoReply)
	}
	return resp.Choices[0].Content, nil
}

// toContent maps calendar chat messages onto langchaingo message parts.
// Unknown roles are sent as the user.
func toContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch Role(strings.ToLower(string(m.Role))) {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}
