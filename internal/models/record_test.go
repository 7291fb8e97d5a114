package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in   string
		want Domain
	}{
		{"products", DomainCatalog},
		{" Catalog ", DomainCatalog},
		{"orders", DomainOrder},
		{"ORDER", DomainOrder},
	}
	for _, tt := range tests {
		got, err := ParseDomain(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDomain("invoices")
	assert.True(t, errors.Is(err, ErrUnknownDomain))
}

func TestDomainCollection(t *testing.T) {
	assert.Equal(t, "productsearchcollection", DomainCatalog.Collection())
	assert.Equal(t, "orderssearchcollection", DomainOrder.Collection())
}
