package search_test

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/xhad/shopsearch/internal/models"
)

type mapEmbedder struct {
	vectors map[string][]float32
	fail    map[string]bool
	mu      sync.Mutex
	seen    []string
}

func (e *mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.seen = append(e.seen, text)
	e.mu.Unlock()
	if e.fail[text] {
		return nil, errors.New("embedding service unavailable")
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, messages []models.Message, maxTokens int) (string, error) {
	args := m.Called(ctx, messages, maxTokens)
	return args.String(0), args.Error(1)
}

// scriptedCompleter answers classification prompts with label and every
// other prompt with answer.
type scriptedCompleter struct {
	label    string
	answer   string
	err      error
	mu       sync.Mutex
	requests [][]models.Message
}

func (c *scriptedCompleter) Complete(_ context.Context, messages []models.Message, _ int) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, messages)
	c.mu.Unlock()
	if len(messages) == 1 {
		return c.label, nil
	}
	return c.answer, c.err
}

func (c *scriptedCompleter) last() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}
