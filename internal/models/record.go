package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrUnknownDomain   = errors.New("unknown domain")
	ErrEmptyEmbedding  = errors.New("empty embedding")
	ErrNoCollection    = errors.New("collection not found")
)

// Domain is the kind of record a file holds. Each domain owns one collection.
type Domain string

const (
	DomainCatalog Domain = "catalog"
	DomainOrder   Domain = "order"
)

func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "catalog", "product", "products":
		return DomainCatalog, nil
	case "order", "orders":
		return DomainOrder, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// Collection returns the fixed collection name for the domain.
func (d Domain) Collection() string {
	if d == DomainOrder {
		return "orderssearchcollection"
	}
	return "productsearchcollection"
}

func (d Domain) String() string { return string(d) }

// Row is one input record keyed by column header.
type Row map[string]string

type Table struct {
	Source  string
	Headers []string
	Rows    []Row
}

// Metadata is stored next to every vector. Catalog and order entries
// fill different subsets of it.
type Metadata struct {
	Source      string `json:"source,omitempty"`
	Category    string `json:"category,omitempty"`
	ProductName string `json:"productName,omitempty"`

	Price        string `json:"price,omitempty"`
	Rating       string `json:"rating,omitempty"`
	MerchantID   string `json:"merchantID,omitempty"`
	ClusterLabel string `json:"clusterLabel,omitempty"`

	ShippingDate   string `json:"shippingDate,omitempty"`
	ReturnEligible string `json:"returnEligible,omitempty"`
	CustomerID     string `json:"customerID,omitempty"`
	OrderID        string `json:"orderID,omitempty"`
	OrderStatus    string `json:"orderStatus,omitempty"`
}

// Summary is the text that gets embedded plus the metadata stored with it.
type Summary struct {
	Text     string
	Metadata Metadata
}

// Entry is a single vector store write.
type Entry struct {
	ID        string
	Embedding []float32
	Metadata  Metadata
	Document  string
}

// Match is a single vector store hit. Distance is cosine distance.
type Match struct {
	ID       string
	Document string
	Metadata Metadata
	Distance float64
}
