package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestConvertResponse_Empty(t *testing.T) {
	resp := convertResponse(nil)
	assert.Empty(t, resp.Text)

	resp = convertResponse(&genai.GenerateContentResponse{})
	assert.Empty(t, resp.Text)
}

func TestConvertResponse_Text(t *testing.T) {
	resp := convertResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text("vaults:\n  primary: {}\n")},
				},
				FinishReason: genai.FinishReasonStop,
			},
		},
	})

	assert.Equal(t, "vaults:\n  primary: {}\n", resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)
}

func TestConvertFinishReason(t *testing.T) {
	assert.Equal(t, "end_turn", convertFinishReason(genai.FinishReasonStop))
	assert.Equal(t, "max_tokens", convertFinishReason(genai.FinishReasonMaxTokens))
}
