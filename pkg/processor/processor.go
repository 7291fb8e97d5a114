package processor

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xhad/shopsearch/internal/models"
)

var requiredColumns = map[models.Domain][]string{
	models.DomainCatalog: {"ProductID", "ProductName", "Category"},
	models.DomainOrder:   {"OrderID", "ProductID"},
}

type ProcessorConfig struct {
	Logger *slog.Logger
}

type Processor struct {
	config ProcessorConfig
}

// RecordError is a row that could not be summarized. Row is zero-based.
type RecordError struct {
	Row int
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Discovery lists what an import saw: distinct categories (catalog only)
// and header keywords.
type Discovery struct {
	Categories []string
	Keywords   []string
}

type Result struct {
	Summaries []models.Summary
	Errors    []*RecordError
	Discovery Discovery
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return Processor{
		config: config,
	}
}

// Process summarizes every row of the table. Malformed rows are skipped
// and reported.
func (p *Processor) Process(domain models.Domain, table *models.Table) Result {
	var res Result
	categories := make(map[string]struct{})
	keywords := make(map[string]struct{})

	for _, h := range table.Headers {
		if kw := strings.ToLower(strings.TrimSpace(h)); kw != "" {
			keywords[kw] = struct{}{}
		}
	}

	for i, raw := range table.Rows {
		row := NormalizeRow(raw)
		summary, err := Summarize(domain, row)
		if err != nil {
			p.config.Logger.Warn("skipping record", "source", table.Source, "row", i, "error", err)
			res.Errors = append(res.Errors, &RecordError{Row: i, Err: err})
			continue
		}
		summary.Metadata.Source = table.Source
		res.Summaries = append(res.Summaries, summary)

		if domain == models.DomainCatalog {
			if c := strings.TrimSpace(row["Category"]); c != "" {
				categories[c] = struct{}{}
			}
		}
	}

	res.Discovery = Discovery{
		Categories: sortedKeys(categories),
		Keywords:   sortedKeys(keywords),
	}
	return res
}

// NormalizeRow strips all whitespace from column names.
func NormalizeRow(row models.Row) models.Row {
	out := make(models.Row, len(row))
	for k, v := range row {
		out[normalizeKey(k)] = v
	}
	return out
}

func normalizeKey(k string) string {
	return strings.Join(strings.Fields(k), "")
}

// Summarize renders a normalized row as embeddable text plus metadata.
// A row missing a required column returns ErrMalformedRecord.
func Summarize(domain models.Domain, row models.Row) (models.Summary, error) {
	required, ok := requiredColumns[domain]
	if !ok {
		return models.Summary{}, fmt.Errorf("%w: %q", models.ErrUnknownDomain, domain)
	}
	for _, col := range required {
		if _, ok := row[col]; !ok {
			return models.Summary{}, fmt.Errorf("%w: missing column %s", models.ErrMalformedRecord, col)
		}
	}

	get := func(col string) string { return strings.TrimSpace(row[col]) }

	if domain == models.DomainOrder {
		text := fmt.Sprintf(
			`Product ID: %s. Product Name: "%s". Customer ID: %s. OrderID: "%s". Category ID: %s. Category: %s. OrderStatus: %s. ShippingDate: %s. ReturnEligible: %s.`,
			get("ProductID"), get("ProductName"), get("CustomerID"), get("OrderID"),
			get("CategoryID"), get("Category"), get("OrderStatus"), get("ShippingDate"), get("ReturnEligible"),
		)
		return models.Summary{
			Text: cleanText(text),
			Metadata: models.Metadata{
				Category:       get("Category"),
				ProductName:    get("ProductName"),
				ShippingDate:   get("ShippingDate"),
				ReturnEligible: get("ReturnEligible"),
				CustomerID:     get("CustomerID"),
				OrderID:        get("OrderID"),
				OrderStatus:    get("OrderStatus"),
			},
		}, nil
	}

	text := fmt.Sprintf(
		`Product ID: %s. Product Name: "%s". Merchant ID: %s. Cluster ID: %s. Cluster Label: "%s". Category ID: %s. Category: %s. Price: $%s. Stock Quantity: %s. Description: "%s". Rating: %s stars.`,
		get("ProductID"), get("ProductName"), get("MerchantID"), get("ClusterID"), get("ClusterLabel"),
		get("CategoryID"), get("Category"), get("Price"), get("StockQuantity"), get("Description"), get("Rating"),
	)
	return models.Summary{
		Text: cleanText(text),
		Metadata: models.Metadata{
			Category:     get("Category"),
			ProductName:  get("ProductName"),
			Price:        get("Price"),
			Rating:       get("Rating"),
			MerchantID:   get("MerchantID"),
			ClusterLabel: get("ClusterLabel"),
		},
	}, nil
}

func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
