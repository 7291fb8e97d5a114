package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/pkg/llm"
)

type fakeModel struct {
	reply    *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	return f.reply, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestChatEngine_Complete(t *testing.T) {
	model := &fakeModel{reply: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "  Product \n"}},
	}}
	engine := llm.NewWithModel(model, llm.ChatConfig{Temperature: 0.2})

	out, err := engine.Complete(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "classify"},
		{Role: models.RoleUser, Content: "cheap tv"},
		{Role: models.RoleAssistant, Content: "ok"},
	}, 10)
	require.NoError(t, err)

	assert.Equal(t, "Product", out)
	require.Len(t, model.messages, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.messages[2].Role)
	assert.Equal(t, 10, model.options.MaxTokens)
	assert.Equal(t, 0.2, model.options.Temperature)
}

func TestChatEngine_NoChoices(t *testing.T) {
	engine := llm.NewWithModel(&fakeModel{reply: &llms.ContentResponse{}}, llm.ChatConfig{})

	out, err := engine.Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestChatEngine_Error(t *testing.T) {
	engine := llm.NewWithModel(&fakeModel{err: errors.New("unavailable")}, llm.ChatConfig{})

	_, err := engine.Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, 0)
	assert.ErrorContains(t, err, "unavailable")
}

func TestNewWithConfig(t *testing.T) {
	engine, err := llm.NewWithConfig(llm.ChatConfig{Provider: "ollama", Temperature: 0.5})
	assert.NoError(t, err)
	assert.NotNil(t, engine)

	engine, err = llm.NewWithConfig(llm.ChatConfig{Provider: "openai", APIKey: "sk-test", Temperature: 0.5})
	assert.NoError(t, err)
	assert.NotNil(t, engine)

	_, err = llm.NewWithConfig(llm.ChatConfig{Temperature: 3})
	assert.Error(t, err)

	_, err = llm.NewWithConfig(llm.ChatConfig{Provider: "bard"})
	assert.Error(t, err)
}
