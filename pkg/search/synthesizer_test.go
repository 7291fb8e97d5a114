package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/pkg/processor"
	"github.com/xhad/shopsearch/pkg/search"
)

func TestSelectMode(t *testing.T) {
	records := []processor.Record{{"Product Name": "LG OLED"}}

	tests := []struct {
		name       string
		class      models.Classification
		confidence float64
		records    []processor.Record
		want       search.Mode
	}{
		{"catalog", models.ClassifiedCatalog, 0.8, records, search.ModeGroundedCatalog},
		{"order", models.ClassifiedOrder, 0.8, records, search.ModeGroundedOrder},
		{"low confidence", models.ClassifiedCatalog, 0.10, records, search.ModeFallback},
		{"no records", models.ClassifiedOrder, 0.8, nil, search.ModeFallback},
		{"unclassified", models.Unclassified, 0.8, records, search.ModeFallback},
		{"threshold is inclusive", models.ClassifiedCatalog, 0.25, records, search.ModeGroundedCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, search.SelectMode(tt.class, tt.confidence, 0.25, tt.records))
		})
	}
}

func TestSynthesizer_Catalog(t *testing.T) {
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, 500).Return("  Here you go!\n", nil)

	records := []processor.Record{
		processor.ParseSummary(`Product ID: 1. Product Name: "LG OLED". Price: $999. Description: "Deep blacks". Rating: 4.8 stars.`),
	}
	out, err := search.NewSynthesizer(completer, 0).Respond(context.Background(), search.ModeGroundedCatalog, "best tv", records)
	require.NoError(t, err)
	assert.Equal(t, "Here you go!", out)

	msgs := completer.Calls[0].Arguments.Get(1).([]models.Message)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "up to 5 products")
	assert.Contains(t, msgs[1].Content, `User Query: "best tv"`)
	assert.Contains(t, msgs[1].Content, "- 1 - LG OLED - $999 | 4.8 stars")
	assert.Contains(t, msgs[1].Content, "Deep blacks")
}

func TestSynthesizer_OrderMissingStatus(t *testing.T) {
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, 500).Return("LG OLED with ID: ORD-2 - Order status unavailable.", nil)

	records := []processor.Record{
		processor.ParseSummary(`Product Name: "LG OLED". OrderID: "ORD-2". OrderStatus: . ShippingDate: 2024-02-01. ReturnEligible: No.`),
	}
	out, err := search.NewSynthesizer(completer, 500).Respond(context.Background(), search.ModeGroundedOrder, "where is ORD-2", records)
	require.NoError(t, err)
	assert.Contains(t, out, "Order status unavailable")

	msgs := completer.Calls[0].Arguments.Get(1).([]models.Message)
	assert.Contains(t, msgs[0].Content, "with ID: [OrderID] - It shipped on [ShippingDate]")
	assert.Contains(t, msgs[0].Content, "at most 5 orders")
	assert.Contains(t, msgs[1].Content, "Order ID: ORD-2 - Product Name: LG OLED | Order Status: Order status unavailable.")
	assert.Contains(t, msgs[1].Content, "Shipping Date: 2024-02-01")
}

func TestSynthesizer_Fallback(t *testing.T) {
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, 500).Return("", nil)

	out, err := search.NewSynthesizer(completer, 500).Respond(context.Background(), search.ModeFallback, "I'm sad", nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	msgs := completer.Calls[0].Arguments.Get(1).([]models.Message)
	assert.Contains(t, msgs[0].Content, "gently promotional")
	assert.NotContains(t, msgs[1].Content, "matching the query")
}

func TestSynthesizer_Error(t *testing.T) {
	completer := new(mockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything, 500).Return("", errors.New("rate limited"))

	_, err := search.NewSynthesizer(completer, 500).Respond(context.Background(), search.ModeFallback, "hi", nil)
	assert.ErrorContains(t, err, "rate limited")
}
