// Package providers defines the model-provider abstraction used by the
// design assistant, plus its request and response types.
package providers

import (
	"context"
	"fmt"
)

// Provider is a chat-completion backend that can draft backup policies.
type Provider interface {
	// Name returns the provider name ("openai", "gemini").
	Name() string

	// CreateMessage sends a request and returns the complete response.
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// Message is a single conversation turn.
type Message struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// MessageRequest is a chat-completion request.
type MessageRequest struct {
	// Model overrides the provider's default model.
	Model string

	// System is the system prompt.
	System string

	// MaxTokens caps the response length. Zero uses the provider default.
	MaxTokens int

	// Messages is the conversation so far, ending with a user message.
	Messages []Message
}

// MessageResponse is a chat-completion response.
type MessageResponse struct {
	// Text is the concatenated text content of the response.
	Text string

	// StopReason is why generation ended ("end_turn", "max_tokens").
	StopReason string
}

// Validate checks a request before sending it.
func (r MessageRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("request has no messages")
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != "user" {
		return fmt.Errorf("last message must be from user, got %q", last.Role)
	}
	return nil
}
