// Package cart holds the per-session mapping of product id to quantity and
// prices it against the catalog.
package cart

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"orderdesk/catalog"
	"orderdesk/models"
)

// Cart maps product ids to positive quantities. Lines keep the order in
// which each id was first added. The zero value is an empty cart.
type Cart struct {
	qty   map[string]int
	order []string
}

func New() *Cart {
	return &Cart{qty: make(map[string]int)}
}

// Add increments the quantity of productID, inserting the line if needed.
// A line never holds more than MaxQuantity.
func (c *Cart) Add(productID string, quantity int) (models.Change, error) {
	if productID == "" {
		return models.Change{}, ErrEmptyProductID
	}
	if quantity < 1 || quantity > MaxQuantity {
		return models.Change{}, &InvalidQuantityError{Raw: strconv.Itoa(quantity)}
	}
	if held := c.qty[productID]; quantity > MaxQuantity-held {
		return models.Change{}, &InvalidQuantityError{Raw: strconv.Itoa(quantity), InCart: held}
	}

	if c.qty == nil {
		c.qty = make(map[string]int)
	}
	if _, ok := c.qty[productID]; !ok {
		c.order = append(c.order, productID)
	}
	c.qty[productID] += quantity

	return models.Change{
		Kind:      models.ItemAdded,
		ProductID: productID,
		Quantity:  quantity,
		At:        time.Now(),
	}, nil
}

// Remove deletes the whole line. It reports false, and changes nothing,
// when productID is not in the cart.
func (c *Cart) Remove(productID string) (models.Change, bool) {
	if _, ok := c.qty[productID]; !ok {
		return models.Change{}, false
	}
	delete(c.qty, productID)
	c.order = slices.DeleteFunc(c.order, func(id string) bool { return id == productID })

	return models.Change{Kind: models.ItemRemoved, ProductID: productID, At: time.Now()}, true
}

func (c *Cart) Clear() models.Change {
	c.qty = make(map[string]int)
	c.order = nil
	return models.Change{Kind: models.CartCleared, At: time.Now()}
}

// Lines returns the entries in first-added order.
func (c *Cart) Lines() []models.CartEntry {
	lines := make([]models.CartEntry, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, models.CartEntry{ProductID: id, Quantity: c.qty[id]})
	}
	return lines
}

// Quantity returns the quantity of productID, zero when absent.
func (c *Cart) Quantity(productID string) int {
	return c.qty[productID]
}

func (c *Cart) Len() int {
	return len(c.order)
}

func (c *Cart) IsEmpty() bool {
	return len(c.order) == 0
}

// Total sums points and amount over every line.
func (c *Cart) Total(cat *catalog.Catalog) (models.Totals, error) {
	_, totals, err := c.Priced(cat)
	return totals, err
}

// Priced returns every line with its subtotals, and the grand totals.
// It fails with *ProductNotFoundError on the first id the catalog lacks.
func (c *Cart) Priced(cat *catalog.Catalog) ([]models.PricedLine, models.Totals, error) {
	lines, totals, orphans := c.Reconcile(cat)
	if len(orphans) > 0 {
		return nil, models.Totals{}, &ProductNotFoundError{ProductID: orphans[0]}
	}
	return lines, totals, nil
}

// Reconcile prices the lines it can and reports the ids it cannot.
// Totals only cover the priced lines.
func (c *Cart) Reconcile(cat *catalog.Catalog) (lines []models.PricedLine, totals models.Totals, orphans []string) {
	for _, entry := range c.Lines() {
		p, ok := cat.Lookup(entry.ProductID)
		if !ok {
			orphans = append(orphans, entry.ProductID)
			continue
		}
		q := decimal.NewFromInt(int64(entry.Quantity))
		line := models.PricedLine{
			ProductID: entry.ProductID,
			Name:      p.Name,
			Quantity:  entry.Quantity,
			Points:    p.Points.Mul(q),
			Amount:    p.Price.Mul(q),
		}
		lines = append(lines, line)
		totals = totals.Add(line)
	}
	return lines, totals, orphans
}

// Clone returns an independent copy.
func (c *Cart) Clone() *Cart {
	out := New()
	for _, id := range c.order {
		out.qty[id] = c.qty[id]
	}
	out.order = slices.Clone(c.order)
	return out
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Lines())
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []models.CartEntry
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	fresh := New()
	for _, l := range lines {
		if _, err := fresh.Add(l.ProductID, l.Quantity); err != nil {
			return err
		}
	}
	*c = *fresh
	return nil
}

// ParseQuantity converts user input into a quantity for Add.
func ParseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > MaxQuantity {
		return 0, &InvalidQuantityError{Raw: raw}
	}
	return n, nil
}
