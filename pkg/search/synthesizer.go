package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/internal/types"
	"github.com/xhad/shopsearch/pkg/processor"
)

type Mode int

const (
	ModeFallback Mode = iota
	ModeGroundedCatalog
	ModeGroundedOrder
)

func (m Mode) String() string {
	switch m {
	case ModeGroundedCatalog:
		return "grounded-catalog"
	case ModeGroundedOrder:
		return "grounded-order"
	}
	return "fallback"
}

// SelectMode grounds the answer only when the category match clears the
// threshold, the query was classified and records were found.
func SelectMode(class models.Classification, confidence, threshold float64, records []processor.Record) Mode {
	if confidence < threshold || len(records) == 0 {
		return ModeFallback
	}
	switch class {
	case models.ClassifiedCatalog:
		return ModeGroundedCatalog
	case models.ClassifiedOrder:
		return ModeGroundedOrder
	}
	return ModeFallback
}

// Synthesizer writes the final answer with the completion model.
type Synthesizer struct {
	completer types.Completer
	maxTokens int
}

func NewSynthesizer(completer types.Completer, maxTokens int) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Synthesizer{completer: completer, maxTokens: maxTokens}
}

// Respond returns the trimmed reply, or "" when the model returned nothing.
func (s *Synthesizer) Respond(ctx context.Context, mode Mode, query string, records []processor.Record) (string, error) {
	system, user := buildPrompts(mode, query, records)
	reply, err := s.completer.Complete(ctx, []models.Message{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: user},
	}, s.maxTokens)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func buildPrompts(mode Mode, query string, records []processor.Record) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: \"%s\"\n\n", query)

	switch mode {
	case ModeGroundedCatalog:
		b.WriteString("Products matching the query:\n\n")
		for _, r := range records {
			fmt.Fprintf(&b, "- %s - %s - %s | %s\n  %s\n",
				field(r, "Product ID"), field(r, "Product Name"), field(r, "Price"), rating(r), field(r, "Description"))
		}
		return catalogSystemPrompt, b.String()

	case ModeGroundedOrder:
		b.WriteString("Orders matching the query:\n\n")
		for _, r := range records {
			status := field(r, "OrderStatus")
			if status == "" {
				status = orderStatusUnavailable
			}
			fmt.Fprintf(&b, "- Order ID: %s - Product Name: %s | Order Status: %s | Shipping Date: %s | Return Eligible: %s\n",
				field(r, "OrderID"), field(r, "Product Name"), status, field(r, "ShippingDate"), field(r, "ReturnEligible"))
		}
		return orderSystemPrompt, b.String()
	}

	return fallbackSystemPrompt, b.String()
}

func field(r processor.Record, key string) string {
	v, _ := r.String(key)
	return v
}

func rating(r processor.Record) string {
	v := field(r, "Rating")
	if v == "" {
		return ""
	}
	return v + " stars"
}
