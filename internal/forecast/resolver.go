package forecast

import (
	"strings"

	"github.com/craftline/forecast-backend/internal/domain"
)

// ResolveStockedProduct locates the product a stocked production line is
// configured with. Precedence is deterministic and documented:
//
//  1. exact product code match,
//  2. exact name match (case-insensitive),
//  3. fuzzy name match (normalized substring, first in catalog order).
//
// The explicit (product, ok) result replaces the old pattern of returning an
// empty collection that every caller re-checked.
func ResolveStockedProduct(products []domain.Product, query string) (domain.Product, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Product{}, false
	}

	for _, p := range products {
		if p.Code == query {
			return p, true
		}
	}

	lowered := strings.ToLower(query)
	for _, p := range products {
		if strings.ToLower(p.Name) == lowered {
			return p, true
		}
	}

	normalized := normalizeName(query)
	for _, p := range products {
		if strings.Contains(normalizeName(p.Name), normalized) {
			return p, true
		}
	}

	return domain.Product{}, false
}

var nameSanitizer = strings.NewReplacer(" ", "", "-", "", "_", "", ".", "")

func normalizeName(name string) string {
	return nameSanitizer.Replace(strings.ToLower(strings.TrimSpace(name)))
}
