package cart

import (
	"errors"
	"fmt"
)

// ErrEmptyProductID rejects an add without a product id.
var ErrEmptyProductID = errors.New("product id is required")

// MaxQuantity caps a single cart line.
const MaxQuantity = 1_000_000

// InvalidQuantityError rejects a quantity that is not a whole number from 1
// to MaxQuantity, or an add that would push a line past MaxQuantity.
// The cart is never modified when it is returned.
type InvalidQuantityError struct {
	Raw    string
	InCart int // quantity already on the line when an add overflows it
}

func (e *InvalidQuantityError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("invalid quantity %q: the line already holds %d and may not exceed %d", e.Raw, e.InCart, MaxQuantity)
	}
	return fmt.Sprintf("invalid quantity %q: must be a whole number from 1 to %d", e.Raw, MaxQuantity)
}

// ProductNotFoundError means the cart references an id that the loaded
// catalog does not have. Removing the orphaned line recovers.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q is in the cart but not in the catalog", e.ProductID)
}
