package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
)

type EmbedderConfig struct {
	Provider string // "openai" or "ollama"
	Model    string
	BaseURL  string
	APIKey   string
}

// NewEmbedder returns the embedder for the configured provider.
func NewEmbedder(config EmbedderConfig) (types.Embedder, error) {
	switch config.Provider {
	case "ollama":
		return NewOllamaEmbedder(config)
	case "openai", "":
		return NewOpenAIEmbedder(config), nil
	}
	return nil, fmt.Errorf("unknown embedding provider: %s", config.Provider)
}

// OllamaEmbedder embeds text with a local Ollama server.
type OllamaEmbedder struct {
	config EmbedderConfig
	llm    *ollama.LLM
}

func NewOllamaEmbedder(config EmbedderConfig) (*OllamaEmbedder, error) {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	emb, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &OllamaEmbedder{
		config: config,
		llm:    emb,
	}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("ollama embedding: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, models.ErrEmptyEmbedding
	}
	return embeddings[0], nil
}
