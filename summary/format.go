// Package summary renders a cart and its order session into the receipt a
// user pastes into a chat, and into PDF and QR renditions of it.
package summary

import (
	"fmt"
	"strings"
	"time"

	"orderdesk/cart"
	"orderdesk/catalog"
	"orderdesk/models"
	"orderdesk/order"
)

const rule = "======================"

// Labels are the user-facing words of the receipt.
type Labels struct {
	Title       string `yaml:"title"`
	Customer    string `yaml:"customer"`
	OrderNo     string `yaml:"order_no"`
	Date        string `yaml:"date"`
	TotalAmount string `yaml:"total_amount"`
	TotalPoints string `yaml:"total_points"`
	Currency    string `yaml:"currency"`
	PointsUnit  string `yaml:"points_unit"`
	Placeholder string `yaml:"placeholder"` // shown when no customer name was entered
}

func DefaultLabels() Labels {
	return Labels{
		Title:       "Product Order Form",
		Customer:    "Customer",
		OrderNo:     "Order No.",
		Date:        "Date",
		TotalAmount: "Total Amount",
		TotalPoints: "Total Points",
		Currency:    "NT$",
		PointsUnit:  "SV",
		Placeholder: "(not provided)",
	}
}

func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&l.Title, d.Title)
	fill(&l.Customer, d.Customer)
	fill(&l.OrderNo, d.OrderNo)
	fill(&l.Date, d.Date)
	fill(&l.TotalAmount, d.TotalAmount)
	fill(&l.TotalPoints, d.TotalPoints)
	fill(&l.Currency, d.Currency)
	fill(&l.PointsUnit, d.PointsUnit)
	fill(&l.Placeholder, d.Placeholder)
	return l
}

// Receipt is the priced snapshot a summary is rendered from.
type Receipt struct {
	Customer string // never empty: the placeholder stands in
	OrderID  string
	IssuedAt time.Time
	Lines    []models.PricedLine
	Totals   models.Totals
}

type Formatter struct {
	labels Labels
}

// New returns a Formatter; empty labels fall back to DefaultLabels.
func New(labels Labels) *Formatter {
	return &Formatter{labels: labels.withDefaults()}
}

func (f *Formatter) Labels() Labels {
	return f.labels
}

// Build prices the cart and captures the order id and time.
// A cart line missing from the catalog fails with *cart.ProductNotFoundError.
func (f *Formatter) Build(sess *order.Session, c *cart.Cart, cat *catalog.Catalog) (Receipt, error) {
	lines, totals, err := c.Priced(cat)
	if err != nil {
		return Receipt{}, err
	}
	customer := sess.CustomerName
	if customer == "" {
		customer = f.labels.Placeholder
	}
	return Receipt{
		Customer: customer,
		OrderID:  sess.CurrentOrderID(),
		IssuedAt: sess.Now(),
		Lines:    lines,
		Totals:   totals,
	}, nil
}

// Render writes the plain-text receipt. Its layout is what people paste into
// chats, so it only changes with the receipt's contents.
func (f *Formatter) Render(r Receipt) string {
	l := f.labels
	var b strings.Builder
	fmt.Fprintf(&b, "📦 【%s】\n", l.Title)
	fmt.Fprintf(&b, "👤 %s: %s\n", l.Customer, r.Customer)
	fmt.Fprintf(&b, "🆔 %s: %s\n", l.OrderNo, r.OrderID)
	fmt.Fprintf(&b, "📅 %s: %s\n", l.Date, r.IssuedAt.Format("2006-01-02 15:04"))
	b.WriteString(rule + "\n")
	for _, line := range r.Lines {
		fmt.Fprintf(&b, "• %s x %d\n", line.Name, line.Quantity)
		fmt.Fprintf(&b, "  (%s %s / %s %s)\n", l.Currency, FormatAmount(line.Amount), FormatPoints(line.Points), l.PointsUnit)
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "💰 %s: %s %s\n", l.TotalAmount, l.Currency, FormatAmount(r.Totals.Amount))
	fmt.Fprintf(&b, "⭐ %s: %s %s", l.TotalPoints, FormatPoints(r.Totals.Points), l.PointsUnit)
	return b.String()
}

// Format is Build followed by Render.
func (f *Formatter) Format(sess *order.Session, c *cart.Cart, cat *catalog.Catalog) (string, error) {
	r, err := f.Build(sess, c, cat)
	if err != nil {
		return "", err
	}
	return f.Render(r), nil
}
