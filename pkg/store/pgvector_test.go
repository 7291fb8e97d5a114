package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/pkg/store"
)

func TestVectorStore(t *testing.T) {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: connString,
		VectorDim:  3,
		IndexLists: 1,
	})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSanitizeUTF8InDocuments(t *testing.T) {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := store.NewWithConfig(ctx, store.VectorStoreConfig{ConnString: connString, VectorDim: 2, IndexLists: 1})
	require.NoError(t, err)
	defer s.Close()

	const name = "test_utf8_collection"
	require.NoError(t, s.DeleteCollection(ctx, name))
	c, err := s.GetOrCreateCollection(ctx, name)
	require.NoError(t, err)
	defer s.DeleteCollection(ctx, name)

	err = c.Add(ctx, []models.Entry{{ID: "bad", Embedding: []float32{1, 0}, Document: "fridge\xff"}})
	require.NoError(t, err)

	matches, err := c.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "fridge", matches[0].Document)
}
