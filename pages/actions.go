package pages

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"orderdesk/cart"
	"orderdesk/globals"
	"orderdesk/models"
	"orderdesk/utils"
)

type addRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type removeRequest struct {
	ProductID string `json:"product_id"`
}

type customerRequest struct {
	Name string `json:"name"`
}

// readAdd reads product_id and quantity from a JSON body or a form.
// A missing quantity means 1, as the page's quantity selector defaults to.
func readAdd(r *http.Request) (string, int, error) {
	var productID, rawQty string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req addRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", 0, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		productID = req.ProductID
		rawQty = strings.Trim(string(req.Quantity), `"`)
	} else {
		productID = r.FormValue("product_id")
		rawQty = r.FormValue("quantity")
	}

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return "", 0, cart.ErrEmptyProductID
	}
	if strings.TrimSpace(rawQty) == "" {
		return productID, 1, nil
	}
	qty, err := cart.ParseQuantity(rawQty)
	if err != nil {
		return "", 0, err
	}
	return productID, qty, nil
}

// readRemove reads product_id from a JSON body or a form. The id travels in
// the body because ids may contain characters that do not survive a path.
func readRemove(r *http.Request) (string, error) {
	var productID string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req removeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
		productID = req.ProductID
	} else {
		productID = r.FormValue("product_id")
	}
	if productID == "" {
		return "", cart.ErrEmptyProductID
	}
	return productID, nil
}

func readCustomer(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req customerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return req.Name, nil
	}
	return r.FormValue("customer"), nil
}

// done answers a successful mutation: the change and the new cart for JSON
// callers, a redirect back to the page for form posts.
func (s *Server) done(w http.ResponseWriter, r *http.Request, change *models.Change, flash string) {
	if !utils.WantsJSON(r) {
		s.backToPage(w, r, flash)
		return
	}
	st, err := s.manager.View(r.Context(), globals.SessionID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"change": change,
		"cart":   s.cartView(st),
	})
}

func (s *Server) AddItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	productID, qty, err := readAdd(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	change, err := s.manager.AddItem(r.Context(), globals.SessionID(r.Context()), productID, qty)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	name := productID
	if p, ok := s.manager.Catalog().Lookup(productID); ok {
		name = p.Name
	}
	s.done(w, r, &change, fmt.Sprintf("Added %d x %s", qty, name))
}

// RemoveItem deletes a cart line. Removing a line that is not there is not
// an error; JSON callers see a null change.
func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	productID, err := readRemove(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	change, removed, err := s.manager.RemoveItem(r.Context(), globals.SessionID(r.Context()), productID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !removed {
		s.done(w, r, nil, "")
		return
	}
	s.done(w, r, &change, "")
}

func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	change, err := s.manager.ClearCart(r.Context(), globals.SessionID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.done(w, r, &change, "")
}

func (s *Server) SetCustomer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, err := readCustomer(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	change, err := s.manager.SetCustomer(r.Context(), globals.SessionID(r.Context()), name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.done(w, r, &change, "")
}

func (s *Server) AdvanceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	change, err := s.manager.AdvanceOrder(r.Context(), globals.SessionID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.done(w, r, &change, "")
}
