package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"orderdesk/notify"
	"orderdesk/pages"
	"orderdesk/ratelim"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/*filepath", pages.Static())
}

func AddPageRoutes(router *httprouter.Router, s *pages.Server) {
	router.GET("/", s.Page)
	router.GET("/health", pages.Health)
}

func AddAPIRoutes(router *httprouter.Router, s *pages.Server) {
	router.GET("/api/catalog", s.Catalog)
	router.GET("/api/categories", s.Categories)
	router.GET("/api/cart", s.Cart)
}

func AddCartRoutes(router *httprouter.Router, s *pages.Server, rateLimiter *ratelim.RateLimiter) {
	router.POST("/cart/items", rateLimiter.Limit(s.AddItem))
	router.POST("/cart/remove", rateLimiter.Limit(s.RemoveItem))
	router.POST("/cart/clear", rateLimiter.Limit(s.ClearCart))
}

func AddOrderRoutes(router *httprouter.Router, s *pages.Server, rateLimiter *ratelim.RateLimiter) {
	router.POST("/order/customer", rateLimiter.Limit(s.SetCustomer))
	router.POST("/order/advance", rateLimiter.Limit(s.AdvanceOrder))
	router.GET("/order/summary.txt", s.SummaryText)
	router.GET("/order/receipt.pdf", s.ReceiptPDF)
	router.GET("/order/qr.png", s.SummaryQR)
}

func AddNotifyRoutes(router *httprouter.Router, hub *notify.Hub) {
	router.GET("/ws", notify.Handler(hub))
}

// New builds the router with every route.
func New(s *pages.Server, hub *notify.Hub, rateLimiter *ratelim.RateLimiter) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	AddStaticRoutes(router)
	AddPageRoutes(router, s)
	AddAPIRoutes(router, s)
	AddCartRoutes(router, s, rateLimiter)
	AddOrderRoutes(router, s, rateLimiter)
	AddNotifyRoutes(router, hub)
	return router
}
