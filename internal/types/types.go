package types

import (
	"context"

	"github.com/xhad/shopsearch/internal/models"
)

// Embedder turns one text into one vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer runs a chat completion and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message, maxTokens int) (string, error)
}

// CollectionStore manages named collections using cosine distance.
// DeleteCollection must succeed when the collection does not exist.
type CollectionStore interface {
	DeleteCollection(ctx context.Context, name string) error
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)
	Close()
}

type Collection interface {
	Name() string
	Add(ctx context.Context, entries []models.Entry) error
	// Query returns up to topK matches ordered by ascending distance.
	Query(ctx context.Context, embedding []float32, topK int) ([]models.Match, error)
}
