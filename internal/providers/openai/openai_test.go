package openai

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/backupwire-aws-go/internal/providers"
)

func TestNew_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestBuildParams(t *testing.T) {
	req := providers.MessageRequest{
		System: "You design AWS Backup policies.",
		Messages: []providers.Message{
			{Role: "user", Content: "one daily plan"},
		},
	}

	params := buildParams(req)
	assert.Equal(t, DefaultModel, string(params.Model))
	assert.Equal(t, int64(4096), params.MaxTokens.Value)
	// system prompt plus the user message
	assert.Len(t, params.Messages, 2)
}

func TestBuildParams_ExplicitModel(t *testing.T) {
	req := providers.MessageRequest{
		Model:     "gpt-4o-mini",
		MaxTokens: 100,
		Messages: []providers.Message{
			{Role: "assistant", Content: "draft 1"},
			{Role: "user", Content: "tighten retention"},
		},
	}

	params := buildParams(req)
	assert.Equal(t, "gpt-4o-mini", string(params.Model))
	assert.Equal(t, int64(100), params.MaxTokens.Value)
	assert.Len(t, params.Messages, 2)
}

func TestConvertFinishReason(t *testing.T) {
	assert.Equal(t, "end_turn", convertFinishReason("stop"))
	assert.Equal(t, "max_tokens", convertFinishReason("length"))
	assert.Equal(t, "content_filter", convertFinishReason("content_filter"))
}

func TestProvider_CreateMessage(t *testing.T) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		t.Skip("Skipping OpenAI test (OPENAI_API_KEY not set)")
	}

	provider, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	req := providers.MessageRequest{
		Model:     "gpt-4o-mini",
		MaxTokens: 100,
		System:    "You are a helpful assistant.",
		Messages: []providers.Message{
			{Role: "user", Content: "Say hello in 5 words or less."},
		},
	}

	resp, err := provider.CreateMessage(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.Text)
}
