package utils

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// BrowseOptions are the catalog browsing parameters carried in the query
// string, or in hidden fields of a form post.
type BrowseOptions struct {
	Search   string
	Category string
}

// ParseBrowseOptions reads q and category from r.
// q is kept verbatim; an empty category means every category.
func ParseBrowseOptions(r *http.Request, allLabel string) BrowseOptions {
	category := strings.TrimSpace(r.FormValue("category"))
	if category == "" {
		category = allLabel
	}

	return BrowseOptions{
		Search:   r.FormValue("q"),
		Category: category,
	}
}

// Query encodes o back into a query string ("" or "?..."), leaving out
// values that are already the defaults.
func (o BrowseOptions) Query(allLabel string) string {
	v := url.Values{}
	if o.Search != "" {
		v.Set("q", o.Search)
	}
	if o.Category != "" && o.Category != allLabel {
		v.Set("category", o.Category)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ContainsIgnoreCase reports whether substr is within str under Unicode
// case folding. An empty str never matches a non-empty substr.
func ContainsIgnoreCase(str, substr string) bool {
	if substr == "" {
		return true
	}
	if str == "" {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(str), fold.String(substr))
}
