package models

import (
	"github.com/shopspring/decimal"
)

// Product is one orderable catalog row.
// ID is kept as the exact source text, so "007" stays "007".
type Product struct {
	ID       string          `json:"id" bson:"id"`
	Name     string          `json:"name" bson:"name"`
	Category string          `json:"category" bson:"category"`
	Points   decimal.Decimal `json:"points" bson:"-"` // SV per unit
	Price    decimal.Decimal `json:"price" bson:"-"`  // DPT per unit, tax included
}
