package summary

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatAmount groups thousands and keeps at most two decimals, dropping
// them entirely for whole amounts: 1500 -> "1,500", 120.5 -> "120.5".
// The digits are exact at any magnitude.
func FormatAmount(d decimal.Decimal) string {
	r := d.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Abs()
	}
	whole := r.Truncate(0)
	out := sign + humanize.BigComma(whole.BigInt())
	if frac := r.Sub(whole); !frac.IsZero() {
		out += strings.TrimPrefix(frac.String(), "0")
	}
	return out
}

// FormatPoints rounds to a whole number of points and groups thousands.
func FormatPoints(d decimal.Decimal) string {
	return humanize.BigComma(d.Round(0).BigInt())
}
