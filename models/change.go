package models

import "time"

// ChangeKind names a state-changing user action.
type ChangeKind string

const (
	ItemAdded       ChangeKind = "item_added"
	ItemRemoved     ChangeKind = "item_removed"
	CartCleared     ChangeKind = "cart_cleared"
	OrderAdvanced   ChangeKind = "order_advanced"
	CustomerRenamed ChangeKind = "customer_renamed"
)

// Change is the notification every mutating operation returns.
// The presentation layer decides whether and when to redraw on it.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	ProductID string     `json:"productId,omitempty"`
	Quantity  int        `json:"quantity,omitempty"`
	Sequence  int        `json:"sequence,omitempty"`
	Customer  string     `json:"customer,omitempty"`
	At        time.Time  `json:"at"`
}
