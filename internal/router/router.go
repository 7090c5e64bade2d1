// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/coffee-store-api/internal/config"
	"github.com/iliyamo/coffee-store-api/internal/handler"
	"github.com/iliyamo/coffee-store-api/internal/middleware"
	"github.com/iliyamo/coffee-store-api/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Orders     *handler.OrderHandler
	Payments   *handler.PaymentHandler
}

// Register mounts all routes on the Echo instance.
//
// Layout:
//
//	/healthz                  liveness probe, no auth
//	/v1/auth/*                session endpoints, no auth
//	GET /v1/categories[...]   public browse, cached and rate limited
//	GET /v1/products[...]     public browse, cached and rate limited
//	/v1/*                     everything else requires a valid access
//	                          token; mutations additionally require
//	                          the Admin role
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Session endpoints. Logout and refresh authenticate with the
	// refresh token in the body, not an access token.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)
	auth.POST("/validate", h.Auth.Validate)

	// Guest browsing of the catalog. Responses are cached in Redis
	// and reads are rate limited per client IP; both middlewares
	// degrade to pass-through when Redis is unavailable.
	public := e.Group("/v1",
		middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
		middleware.ResponseCache(config.LoadCacheConfig(), rdb),
	)
	public.GET("/categories", h.Categories.List)
	public.GET("/categories/:id", h.Categories.Get)
	public.GET("/products", h.Products.List)
	public.GET("/products/:id", h.Products.Get)

	// Everything below needs a valid access token.
	api := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))
	api.GET("/me", h.Auth.Me)

	api.GET("/orders", h.Orders.List)
	api.GET("/orders/:id", h.Orders.Get)
	api.POST("/orders", h.Orders.Create)

	api.POST("/payments", h.Payments.Create)

	// Catalog mutations and payment administration are Admin only.
	admin := api.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/categories", h.Categories.Create)
	admin.PUT("/categories/:id", h.Categories.Update)
	admin.DELETE("/categories/:id", h.Categories.Delete)

	admin.POST("/products", h.Products.Create)
	admin.PUT("/products/:id", h.Products.Update)
	admin.DELETE("/products/:id", h.Products.Delete)

	admin.PATCH("/orders/:id/status", h.Orders.UpdateStatus)
	admin.DELETE("/orders/:id", h.Orders.Delete)

	admin.GET("/payments", h.Payments.List)
	admin.GET("/payments/:id", h.Payments.Get)
	admin.PUT("/payments/:id", h.Payments.Update)
	admin.DELETE("/payments/:id", h.Payments.Delete)
}
