package models

import (
	"github.com/shopspring/decimal"
)

// CartEntry is one line of a cart: a product id and a positive quantity.
type CartEntry struct {
	ProductID string `json:"productId" bson:"productId"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// PricedLine is a cart line joined with its catalog product.
// Points and Amount are subtotals (unit value * quantity).
type PricedLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Points    decimal.Decimal `json:"points"`
	Amount    decimal.Decimal `json:"amount"`
}

// Totals is the grand total of a cart.
type Totals struct {
	Points decimal.Decimal `json:"points"`
	Amount decimal.Decimal `json:"amount"`
}

// Add returns t plus the subtotals of line.
func (t Totals) Add(line PricedLine) Totals {
	return Totals{
		Points: t.Points.Add(line.Points),
		Amount: t.Amount.Add(line.Amount),
	}
}

// IsZero reports whether both totals are zero.
func (t Totals) IsZero() bool {
	return t.Points.IsZero() && t.Amount.IsZero()
}
