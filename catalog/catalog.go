// Package catalog loads the orderable products once and serves them
// read-only for the rest of the process.
package catalog

import (
	"context"
	"fmt"
	"slices"

	"orderdesk/models"
)

// Source produces the raw product rows of a catalog.
type Source interface {
	Load(ctx context.Context) ([]models.Product, error)
	String() string
}

// Catalog is an immutable, validated product list.
// The zero value is an empty catalog.
type Catalog struct {
	products   []models.Product
	byID       map[string]int
	categories []string
}

// New validates products and builds a Catalog. Ids must be non-empty and
// unique; points and prices must not be negative. Source order is kept.
func New(products []models.Product) (*Catalog, error) {
	if len(products) == 0 {
		return nil, loadErr("", 0, "", "no products", nil)
	}

	c := &Catalog{
		products: make([]models.Product, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(c.products, products)

	seen := make(map[string]struct{})
	for i, p := range c.products {
		row := i + 1
		if p.ID == "" {
			return nil, loadErr("", row, "id", "empty product id", nil)
		}
		if first, dup := c.byID[p.ID]; dup {
			return nil, loadErr("", row, "id", fmt.Sprintf("duplicate product id %q (first seen in row %d)", p.ID, first+1), nil)
		}
		if p.Points.IsNegative() {
			return nil, loadErr("", row, "points", "negative value "+p.Points.String(), nil)
		}
		if p.Price.IsNegative() {
			return nil, loadErr("", row, "price", "negative value "+p.Price.String(), nil)
		}
		c.byID[p.ID] = i
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			c.categories = append(c.categories, p.Category)
		}
	}
	slices.Sort(c.categories)
	return c, nil
}

// Products returns a copy of all products in source order.
func (c *Catalog) Products() []models.Product {
	return slices.Clone(c.products)
}

// Lookup finds a product by its exact id.
func (c *Catalog) Lookup(id string) (models.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Categories returns the sorted distinct categories.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

func (c *Catalog) Len() int {
	return len(c.products)
}
