// Package openai provides an OpenAI API implementation of the Provider interface.
package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lex00/backupwire-aws-go/internal/providers"
)

// DefaultModel is the default model used by the OpenAI provider.
const DefaultModel = string(openai.ChatModelGPT4o)

// Provider implements the providers.Provider interface using the OpenAI API.
type Provider struct {
	client *openai.Client
}

// Config contains configuration for the OpenAI provider.
type Config struct {
	// APIKey for OpenAI (defaults to OPENAI_API_KEY env var)
	APIKey string
}

// New creates a new OpenAI provider.
func New(config Config) (*Provider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client: &client,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openai"
}

// CreateMessage sends a message request and returns the complete response.
func (p *Provider) CreateMessage(ctx context.Context, req providers.MessageRequest) (*providers.MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := p.client.Chat.Completions.New(ctx, buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	return convertResponse(resp), nil
}

// buildParams converts a MessageRequest to OpenAI API parameters.
func buildParams(req providers.MessageRequest) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		if msg.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(msg.Content))
		} else {
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(model),
		MaxTokens: openai.Int(int64(maxTokens)),
		Messages:  messages,
	}
}

// convertResponse converts an OpenAI response to a provider response.
func convertResponse(resp *openai.ChatCompletion) *providers.MessageResponse {
	if resp == nil || len(resp.Choices) == 0 {
		return &providers.MessageResponse{}
	}

	choice := resp.Choices[0]
	var text strings.Builder
	text.WriteString(choice.Message.Content)

	return &providers.MessageResponse{
		Text:       text.String(),
		StopReason: convertFinishReason(string(choice.FinishReason)),
	}
}

// convertFinishReason converts an OpenAI finish reason to a provider stop reason.
func convertFinishReason(reason string) string {
	switch reason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	default:
		return reason
	}
}
