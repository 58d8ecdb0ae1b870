package pages

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"orderdesk/globals"
	"orderdesk/models"
	"orderdesk/search"
	"orderdesk/utils"
)

// Catalog returns the products matching ?q= and ?category=.
func (s *Server) Catalog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	browse := utils.ParseBrowseOptions(r, search.AllCategories)
	products := search.Filter(s.manager.Catalog(), browse.Search, browse.Category)
	if products == nil {
		products = []models.Product{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"products": products,
		"count":    len(products),
	})
}

func (s *Server) Categories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, search.CategoryOptions(s.manager.Catalog()))
}

func (s *Server) Cart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st, err := s.manager.View(r.Context(), globals.SessionID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.cartView(st))
}
