package pages

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"orderdesk/globals"
	"orderdesk/models"
	"orderdesk/search"
	"orderdesk/session"
	"orderdesk/summary"
	"orderdesk/utils"
)

var funcs = template.FuncMap{
	"amount": summary.FormatAmount,
	"points": summary.FormatPoints,
}

// cartView is the cart as both the page and /api/cart show it. Orphans are
// cart lines whose product the catalog no longer has.
type cartView struct {
	OrderID  string              `json:"orderId"`
	Customer string              `json:"customer"`
	Lines    []models.PricedLine `json:"lines"`
	Totals   models.Totals       `json:"totals"`
	Orphans  []string            `json:"orphans"`
	Empty    bool                `json:"empty"`
}

func (s *Server) cartView(st *session.State) cartView {
	lines, totals, orphans := st.Cart.Reconcile(s.manager.Catalog())
	if lines == nil {
		lines = []models.PricedLine{}
	}
	if orphans == nil {
		orphans = []string{}
	}
	return cartView{
		OrderID:  st.Order.CurrentOrderID(),
		Customer: st.Order.CustomerName,
		Lines:    lines,
		Totals:   totals,
		Orphans:  orphans,
		Empty:    st.Cart.IsEmpty(),
	}
}

type pageData struct {
	Labels     summary.Labels
	Browse     utils.BrowseOptions
	Categories []string
	Products   []models.Product
	Cart       cartView
	Summary    string
	Flash      *flash
}

// Health is a simple health check handler.
func Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// Page renders the ordering page: the filtered catalog on one side, the cart,
// order details and summary on the other.
func (s *Server) Page(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st, err := s.manager.View(r.Context(), globals.SessionID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cat := s.manager.Catalog()
	browse := utils.ParseBrowseOptions(r, search.AllCategories)

	data := pageData{
		Labels:     s.formatter.Labels(),
		Browse:     browse,
		Categories: search.CategoryOptions(cat),
		Products:   search.Filter(cat, browse.Search, browse.Category),
		Cart:       s.cartView(st),
		Flash:      takeFlash(w, r),
	}
	if !data.Cart.Empty && len(data.Cart.Orphans) == 0 {
		text, err := s.formatter.Format(st.Order, st.Cart, cat)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		data.Summary = text
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
