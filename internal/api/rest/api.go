package rest

import (
	"net/http"

	"github.com/CameronXie/canteen-admin/internal/api/rest/handlers"
	"github.com/CameronXie/canteen-admin/internal/api/rest/middlewares"
)

type RouterConfig struct {
	SignInHandler           http.Handler
	MeHandler               http.Handler
	FeedHandler             http.Handler
	OrderHandler            *handlers.OrderHandler
	DashboardHandler        *handlers.DashboardHandler
	ProductHandler          *handlers.ProductHandler
	CategoryHandler         *handlers.CategoryHandler
	PaymentHandler          *handlers.PaymentHandler
	AuthorisationMiddleware middlewares.Middleware
}

// NewMuxWithHandlers initializes a new HTTP mux with routes defined by the given RouterConfig.
// Every /api/v1 route sits behind the authorisation middleware.
func NewMuxWithHandlers(cfg *RouterConfig) *http.ServeMux {
	router := http.NewServeMux()

	router.Handle("GET /health", handlers.HealthHandler{})
	router.Handle("POST /auth/signin", cfg.SignInHandler)

	protected := func(pattern string, h http.Handler) {
		router.Handle(pattern, cfg.AuthorisationMiddleware.Handle(h))
	}

	protected("GET /api/v1/me", cfg.MeHandler)
	protected("GET /api/v1/feed", cfg.FeedHandler)

	protected("GET /api/v1/orders", http.HandlerFunc(cfg.OrderHandler.List))
	protected("GET /api/v1/orders/export", http.HandlerFunc(cfg.OrderHandler.Export))
	protected("GET /api/v1/orders/{id}", http.HandlerFunc(cfg.OrderHandler.Get))
	protected("PATCH /api/v1/orders/{id}/status", http.HandlerFunc(cfg.OrderHandler.UpdateStatus))
	protected("POST /api/v1/orders/{id}/deliver", http.HandlerFunc(cfg.OrderHandler.Deliver))

	protected("GET /api/v1/dashboard/summary", http.HandlerFunc(cfg.DashboardHandler.Summary))
	protected("GET /api/v1/dashboard/months", http.HandlerFunc(cfg.DashboardHandler.Months))

	protected("GET /api/v1/products", http.HandlerFunc(cfg.ProductHandler.List))
	protected("POST /api/v1/products", http.HandlerFunc(cfg.ProductHandler.Create))
	protected("GET /api/v1/products/{id}", http.HandlerFunc(cfg.ProductHandler.Get))
	protected("PUT /api/v1/products/{id}", http.HandlerFunc(cfg.ProductHandler.Update))
	protected("DELETE /api/v1/products/{id}", http.HandlerFunc(cfg.ProductHandler.Delete))

	protected("GET /api/v1/categories", http.HandlerFunc(cfg.CategoryHandler.List))
	protected("POST /api/v1/categories", http.HandlerFunc(cfg.CategoryHandler.Create))
	protected("PUT /api/v1/categories/{id}", http.HandlerFunc(cfg.CategoryHandler.Rename))
	protected("DELETE /api/v1/categories/{id}", http.HandlerFunc(cfg.CategoryHandler.Delete))

	protected("GET /api/v1/payments", http.HandlerFunc(cfg.PaymentHandler.List))
	protected("GET /api/v1/payments/export", http.HandlerFunc(cfg.PaymentHandler.Export))

	return router
}
