package llm

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/xhad/shopsearch/internal/models"
)

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	config EmbedderConfig
	client *goopenai.Client
}

func NewOpenAIEmbedder(config EmbedderConfig) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = "text-embedding-3-small"
	}

	cfg := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	return &OpenAIEmbedder{
		config: config,
		client: goopenai.NewClientWithConfig(cfg),
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(e.config.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, models.ErrEmptyEmbedding
	}
	return resp.Data[0].Embedding, nil
}
