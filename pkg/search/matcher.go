package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/xhad/shopsearch/internal/types"
	"github.com/xhad/shopsearch/pkg/vector"
)

type CategoryMatch struct {
	Category   string
	Confidence float64
}

// Matcher picks the category label closest to a query.
type Matcher struct {
	embedder   types.Embedder
	categories []string
}

func NewMatcher(embedder types.Embedder, categories []string) *Matcher {
	return &Matcher{embedder: embedder, categories: categories}
}

// Match embeds the lower-cased query and every category label and returns
// the most similar label. With no usable vectors the category is empty and
// the confidence is -1.
func (m *Matcher) Match(ctx context.Context, query string) (CategoryMatch, error) {
	queryVec, err := m.embedder.Embed(ctx, strings.ToLower(query))
	if err != nil {
		return CategoryMatch{Confidence: -1}, fmt.Errorf("embed query: %w", err)
	}

	best := CategoryMatch{Confidence: -1}
	for _, category := range m.categories {
		vec, err := m.embedder.Embed(ctx, category)
		if err != nil {
			return CategoryMatch{Confidence: -1}, fmt.Errorf("embed category %q: %w", category, err)
		}
		if sim := vector.Cosine(queryVec, vec); sim > best.Confidence {
			best = CategoryMatch{Category: category, Confidence: sim}
		}
	}
	return best, nil
}
