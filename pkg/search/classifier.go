package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
)

const classifierPrompt = `You sort shopper queries into one of two groups: "Product" or "Order".

- "Product": the shopper wants to browse, compare, or learn about items.
- "Order": the shopper is asking about something they bought: order status, tracking, shipping, returns, or payment.

Examples:

- "Show me TVs and laptops." -> Product
- "Can I track my order?" -> Order
- "I'd like to buy a PC." -> Product
- "Where is my order?" -> Order
- "Has my order shipped yet?" -> Order
- "How much is the AMD Ryzen 5?" -> Product
- "What's the status of my AMD Ryzen 5 order?" -> Order (it names a product, but asks about the order)

Query: "%s"
Answer with one word: "Product" or "Order".`

// Classifier decides which collection a query should search.
type Classifier struct {
	completer types.Completer
	maxTokens int
}

func NewClassifier(completer types.Completer, maxTokens int) *Classifier {
	if maxTokens <= 0 {
		maxTokens = 10
	}
	return &Classifier{completer: completer, maxTokens: maxTokens}
}

// Classify returns Unclassified for any reply other than Product or Order.
func (c *Classifier) Classify(ctx context.Context, query string) (models.Classification, error) {
	reply, err := c.completer.Complete(ctx, []models.Message{
		{Role: models.RoleUser, Content: fmt.Sprintf(classifierPrompt, query)},
	}, c.maxTokens)
	if err != nil {
		return models.Unclassified, fmt.Errorf("classify query: %w", err)
	}
	return parseClassification(reply), nil
}

func parseClassification(reply string) models.Classification {
	label := strings.Trim(strings.TrimSpace(reply), `"'.`)
	switch {
	case strings.EqualFold(label, "Product"):
		return models.ClassifiedCatalog
	case strings.EqualFold(label, "Order"):
		return models.ClassifiedOrder
	}
	return models.Unclassified
}
