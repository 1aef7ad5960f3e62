// Package gemini provides a Google Gemini API implementation of the Provider interface.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/lex00/backupwire-aws-go/internal/providers"
)

// DefaultModel is the default model used by the Gemini provider.
const DefaultModel = "gemini-1.5-flash"

// Provider implements the providers.Provider interface using the Google Gemini API.
type Provider struct {
	client *genai.Client
}

// Config contains configuration for the Gemini provider.
type Config struct {
	// APIKey for Google AI Studio (defaults to GEMINI_API_KEY env var)
	APIKey string
}

// New creates a new Gemini provider.
func New(config Config) (*Provider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Provider{
		client: client,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "gemini"
}

// Close releases the underlying client connection.
func (p *Provider) Close() error {
	return p.client.Close()
}

// CreateMessage sends a message request and returns the complete response.
func (p *Provider) CreateMessage(ctx context.Context, req providers.MessageRequest) (*providers.MessageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	model := p.buildModel(req)
	session := model.StartChat()

	// Everything but the final user message is history.
	for _, msg := range req.Messages[:len(req.Messages)-1] {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	prompt := req.Messages[len(req.Messages)-1].Content
	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	return convertResponse(resp), nil
}

// buildModel configures a generative model for the request.
func (p *Provider) buildModel(req providers.MessageRequest) *genai.GenerativeModel {
	name := req.Model
	if name == "" {
		name = DefaultModel
	}

	model := p.client.GenerativeModel(name)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	return model
}

// convertResponse converts a Gemini response to a provider response.
func convertResponse(resp *genai.GenerateContentResponse) *providers.MessageResponse {
	if resp == nil || len(resp.Candidates) == 0 {
		return &providers.MessageResponse{}
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}

	return &providers.MessageResponse{
		Text:       text.String(),
		StopReason: convertFinishReason(candidate.FinishReason),
	}
}

// convertFinishReason converts a Gemini finish reason to a provider stop reason.
func convertFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop:
		return "end_turn"
	case genai.FinishReasonMaxTokens:
		return "max_tokens"
	default:
		return strings.ToLower(reason.String())
	}
}
