package processor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/shopsearch/internal/models"
	"github.com/xhad/shopsearch/pkg/processor"
)

func productRow() models.Row {
	return models.Row{
		"Product ID":     "101",
		"Product Name":   "Samsung  QE55 TV",
		"Merchant ID":    "7",
		"Cluster ID":     "12",
		"Cluster Label":  "Samsung TVs",
		"Category ID":    "2612",
		"Category":       " TVs ",
		"Price":          "499.99",
		"Stock Quantity": "14",
		"Description":    "55 inch QLED",
		"Rating":         "4.5",
	}
}

func orderRow() models.Row {
	return models.Row{
		"ProductID":      "101",
		"ProductName":    "Samsung QE55 TV",
		"CustomerID":     "C-9",
		"OrderID":        "ORD-1",
		"CategoryID":     "2612",
		"Category":       "TVs",
		"OrderStatus":    "Shipped",
		"ShippingDate":   "2024-01-02",
		"ReturnEligible": "Yes",
	}
}

func TestSummarize_Catalog(t *testing.T) {
	s, err := processor.Summarize(models.DomainCatalog, processor.NormalizeRow(productRow()))
	require.NoError(t, err)

	assert.Equal(t,
		`Product ID: 101. Product Name: "Samsung QE55 TV". Merchant ID: 7. Cluster ID: 12. Cluster Label: "Samsung TVs". Category ID: 2612. Category: TVs. Price: $499.99. Stock Quantity: 14. Description: "55 inch QLED". Rating: 4.5 stars.`,
		s.Text)
	assert.Equal(t, "TVs", s.Metadata.Category)
	assert.Equal(t, "499.99", s.Metadata.Price)
	assert.Equal(t, "4.5", s.Metadata.Rating)
	assert.Equal(t, "Samsung TVs", s.Metadata.ClusterLabel)
}

func TestSummarize_Order(t *testing.T) {
	s, err := processor.Summarize(models.DomainOrder, orderRow())
	require.NoError(t, err)

	assert.Equal(t,
		`Product ID: 101. Product Name: "Samsung QE55 TV". Customer ID: C-9. OrderID: "ORD-1". Category ID: 2612. Category: TVs. OrderStatus: Shipped. ShippingDate: 2024-01-02. ReturnEligible: Yes.`,
		s.Text)
	assert.Equal(t, "ORD-1", s.Metadata.OrderID)
	assert.Equal(t, "Shipped", s.Metadata.OrderStatus)
}

func TestSummarize_Malformed(t *testing.T) {
	row := orderRow()
	delete(row, "OrderID")

	_, err := processor.Summarize(models.DomainOrder, row)
	assert.True(t, errors.Is(err, models.ErrMalformedRecord))

	_, err = processor.Summarize(models.Domain("invoices"), row)
	assert.True(t, errors.Is(err, models.ErrUnknownDomain))
}

func TestRoundTrip(t *testing.T) {
	catalog, err := processor.Summarize(models.DomainCatalog, processor.NormalizeRow(productRow()))
	require.NoError(t, err)

	rec := processor.ParseSummary(catalog.Text)
	assert.Equal(t, 101.0, rec["Product ID"])
	assert.Equal(t, "Samsung QE55 TV", rec["Product Name"])
	assert.Equal(t, 7.0, rec["Merchant ID"])
	assert.Equal(t, "Samsung TVs", rec["Cluster Label"])
	assert.Equal(t, "TVs", rec["Category"])
	assert.Equal(t, "$499.99", rec["Price"])
	assert.Equal(t, 14.0, rec["Stock Quantity"])
	assert.Equal(t, "55 inch QLED", rec["Description"])
	assert.Equal(t, 4.5, rec["Rating"])

	order, err := processor.Summarize(models.DomainOrder, orderRow())
	require.NoError(t, err)

	rec = processor.ParseSummary(order.Text)
	assert.Equal(t, "C-9", rec["Customer ID"])
	assert.Equal(t, "ORD-1", rec["OrderID"])
	assert.Equal(t, "Shipped", rec["OrderStatus"])
	assert.Equal(t, "2024-01-02", rec["ShippingDate"])
	assert.Equal(t, "Yes", rec["ReturnEligible"])
}

func TestRoundTrip_FreeTextStartingWithDigits(t *testing.T) {
	row := productRow()
	row["Product Name"] = "55 inch Samsung TV"
	row["Cluster Label"] = "4 door fridges"
	row["Description"] = "2 year warranty included"

	s, err := processor.Summarize(models.DomainCatalog, processor.NormalizeRow(row))
	require.NoError(t, err)

	rec := processor.ParseSummary(s.Text)
	assert.Equal(t, "55 inch Samsung TV", rec["Product Name"])
	assert.Equal(t, "4 door fridges", rec["Cluster Label"])
	assert.Equal(t, "2 year warranty included", rec["Description"])
	assert.Equal(t, 4.5, rec["Rating"])
}

func TestParseSummary_SkipsEmptyValues(t *testing.T) {
	row := orderRow()
	row["OrderStatus"] = ""
	s, err := processor.Summarize(models.DomainOrder, row)
	require.NoError(t, err)

	rec := processor.ParseSummary(s.Text)
	_, ok := rec["OrderStatus"]
	assert.False(t, ok)
	assert.Equal(t, "ORD-1", rec["OrderID"])
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		doc  string
		want any
	}{
		{"Price: $12.99", "$12.99"},
		{"Quantity: 12", 12.0},
		{"Rating: 3 stars.", 3.0},
		{"Date: 2024-01-02", "2024-01-02"},
		{"Code: 12abc", "12abc"},
		{`Name: "Fridge"`, "Fridge"},
		{"Ratio: -0.5", -0.5},
		{"Description: 2 year warranty", "2 year warranty"},
		{"Cluster Label: 4 door fridges", "4 door fridges"},
		{"Rating: 4.5 stars", 4.5},
		{"Size: 55 inch", "55 inch"},
		{"Stock Quantity: 14.", 14.0},
	}

	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			rec := processor.ParseSummary(tt.doc)
			for _, v := range rec {
				assert.Equal(t, tt.want, v)
			}
			assert.Len(t, rec, 1)
		})
	}
}

func TestProcessor_Process(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	broken := productRow()
	delete(broken, "Category")
	second := productRow()
	second["Category"] = "Fridges"

	table := &models.Table{
		Source:  "data/products.csv",
		Headers: []string{"Product ID", " Category ", "Price"},
		Rows:    []models.Row{productRow(), broken, second},
	}

	res := p.Process(models.DomainCatalog, table)

	require.Len(t, res.Summaries, 2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Row)
	assert.ErrorIs(t, res.Errors[0], models.ErrMalformedRecord)
	assert.Equal(t, "data/products.csv", res.Summaries[0].Metadata.Source)
	assert.Equal(t, []string{"Fridges", "TVs"}, res.Discovery.Categories)
	assert.Equal(t, []string{"category", "price", "product id"}, res.Discovery.Keywords)
}
