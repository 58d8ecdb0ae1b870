// Package search derives the visible part of the catalog from a free-text
// term and a category selector.
package search

import (
	"orderdesk/catalog"
	"orderdesk/models"
	"orderdesk/utils"
)

// AllCategories is the selector value that disables category filtering.
const AllCategories = "All"

// Filter keeps products whose name or id contains term (case-insensitive)
// and, unless category is AllCategories, whose category equals it exactly.
// Any non-empty term filters, whitespace included.
// It has no side effects and keeps catalog order.
func Filter(cat *catalog.Catalog, term, category string) []models.Product {
	var out []models.Product
	for _, p := range cat.Products() {
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		if category != AllCategories && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTerm(p models.Product, term string) bool {
	return utils.ContainsIgnoreCase(p.Name, term) || utils.ContainsIgnoreCase(p.ID, term)
}

// CategoryOptions lists the selector choices: AllCategories first, then the
// sorted distinct catalog categories.
func CategoryOptions(cat *catalog.Catalog) []string {
	return append([]string{AllCategories}, cat.Categories()...)
}
