package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
)

// Retrieval is what the retriever found for one query.
type Retrieval struct {
	Classification models.Classification
	Documents      []string
}

type Retriever struct {
	classifier *Classifier
	store      types.CollectionStore
	maxResults int
}

func NewRetriever(classifier *Classifier, store types.CollectionStore, maxResults int) *Retriever {
	if maxResults <= 0 {
		maxResults = 10000
	}
	return &Retriever{classifier: classifier, store: store, maxResults: maxResults}
}

// Retrieve classifies the query and searches that domain's collection.
// Catalog hits are kept only when their category equals category. Order
// hits are not filtered.
func (r *Retriever) Retrieve(ctx context.Context, query string, embedding []float32, category string) (Retrieval, error) {
	class, err := r.classifier.Classify(ctx, query)
	if err != nil {
		return Retrieval{Classification: models.Unclassified}, err
	}

	domain, ok := class.Domain()
	if !ok {
		return Retrieval{Classification: class}, nil
	}

	collection, err := r.store.GetOrCreateCollection(ctx, domain.Collection())
	if err != nil {
		return Retrieval{Classification: class}, fmt.Errorf("open collection: %w", err)
	}

	matches, err := collection.Query(ctx, embedding, r.maxResults)
	if err != nil {
		return Retrieval{Classification: class}, fmt.Errorf("query collection: %w", err)
	}

	res := Retrieval{Classification: class}
	for _, m := range matches {
		if strings.TrimSpace(m.Document) == "" {
			continue
		}
		if domain == models.DomainCatalog && m.Metadata.Category != category {
			continue
		}
		res.Documents = append(res.Documents, m.Document)
	}
	return res, nil
}
