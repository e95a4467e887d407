package forecast

import (
	"testing"

	"github.com/craftline/forecast-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStockedProduct(t *testing.T) {
	catalog := []domain.Product{
		{ID: 1, Code: "SHELF-OAK", Name: "Oak Shelf Classic"},
		{ID: 2, Code: "SHELF-PINE", Name: "Pine Shelf"},
		{ID: 3, Code: "Oak Shelf Classic", Name: "Decoy"},
	}

	// Exact code wins even when another product's name matches the query.
	p, ok := ResolveStockedProduct(catalog, "Oak Shelf Classic")
	require.True(t, ok)
	assert.Equal(t, int64(3), p.ID)

	p, ok = ResolveStockedProduct(catalog, "SHELF-PINE")
	require.True(t, ok)
	assert.Equal(t, int64(2), p.ID)

	// Exact name is case-insensitive.
	p, ok = ResolveStockedProduct(catalog, "pine shelf")
	require.True(t, ok)
	assert.Equal(t, int64(2), p.ID)

	// Fuzzy match normalizes spacing and punctuation.
	p, ok = ResolveStockedProduct(catalog, "oak-shelf")
	require.True(t, ok)
	assert.Equal(t, int64(1), p.ID)

	_, ok = ResolveStockedProduct(catalog, "walnut table")
	assert.False(t, ok)

	_, ok = ResolveStockedProduct(catalog, "   ")
	assert.False(t, ok)
}

func TestResolveStockedProductFuzzyTakesCatalogOrder(t *testing.T) {
	catalog := []domain.Product{
		{ID: 1, Code: "A", Name: "Birch Chair Standard"},
		{ID: 2, Code: "B", Name: "Birch Chair Deluxe"},
	}

	p, ok := ResolveStockedProduct(catalog, "birch chair")
	require.True(t, ok)
	assert.Equal(t, int64(1), p.ID)
}
