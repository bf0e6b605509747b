package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rolodex/internal/config"
)

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, _, err := NewClient(context.Background(), config.LLMConfig{Provider: "watson"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestNewClientOpenAI(t *testing.T) {
	client, embedder, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, embedder)
}

func TestNewClientOllama(t *testing.T) {
	// Ollama rides the OpenAI-compatible API; no key needed.
	client, embedder, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "ollama",
		Model:    "llama3",
		BaseURL:  "http://localhost:11434",
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, embedder)
}

func TestNewClientClaudeHasNoEmbedder(t *testing.T) {
	client, embedder, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "claude",
		APIKey:   "sk-ant-test",
		Model:    "claude-sonnet-4-20250514",
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Nil(t, embedder)
}

func TestNewClientIsCaseInsensitive(t *testing.T) {
	client, _, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "OpenAI",
		APIKey:   "sk-test",
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
