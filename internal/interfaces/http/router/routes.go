package router

import (
	"github.com/gin-gonic/gin"
	"github.com/stitchline/backend/internal/interfaces/http/handler"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoint implementations mounted under /api
type Handlers struct {
	Auth        *handler.AuthHandler
	Products    *handler.ProductHandler
	Cart        *handler.CartHandler
	Orders      *handler.OrderHandler
	Reports     *handler.ReportHandler
	Users       *handler.UserHandler
	ServiceDesk *handler.ServiceDeskHandler
	System      *handler.SystemHandler
}

// Guards are the access middleware applied per route
type Guards struct {
	// Auth requires a valid bearer token
	Auth gin.HandlerFunc
	// OptionalAuth attaches the caller when a token is present
	OptionalAuth gin.HandlerFunc
	// AuthLimit throttles the credential endpoints. Nil disables it.
	AuthLimit gin.HandlerFunc
}

// ShopGroups returns the route groups of the shop API
func ShopGroups(h Handlers, g Guards) []RouteRegistrar {
	admin := middleware.RequireAdmin()

	authGroup := NewDomainGroup("auth", "")
	if g.AuthLimit != nil {
		authGroup.Use(g.AuthLimit)
	}
	authGroup.
		POST("/register", h.Auth.Register).
		POST("/auth/login", h.Auth.Login).
		POST("/auth/verify-otp", h.Auth.VerifyOTP)

	products := NewDomainGroup("products", "/products").
		GET("", h.Products.List).
		GET("/:id", h.Products.Get).
		POST("", g.Auth, admin, h.Products.Create).
		PUT("/:id", g.Auth, admin, h.Products.Update).
		DELETE("/:id", g.Auth, admin, h.Products.Delete).
		POST("/:id/image-upload-url", g.Auth, admin, h.Products.ImageUploadURL)

	cart := NewDomainGroup("cart", "/cart").
		Use(g.Auth).
		GET("", h.Cart.Get).
		POST("/add", h.Cart.Add).
		PUT("/update", h.Cart.Update).
		DELETE("/remove/:cartId", h.Cart.Remove)

	orders := NewDomainGroup("orders", "/orders").
		Use(g.Auth).
		POST("", h.Orders.Place).
		GET("", admin, h.Orders.List).
		GET("/user", h.Orders.ListMine).
		GET("/:id", h.Orders.Get).
		PUT("/:id", admin, h.Orders.UpdateStatus).
		GET("/:id/history", h.Orders.History).
		GET("/:id/invoice", h.Orders.Invoice)

	analytics := NewDomainGroup("analytics", "/analytics").
		Use(g.Auth, admin).
		GET("/dashboard", h.Reports.Dashboard).
		GET("/profit", h.Reports.Profit)

	adminGroup := NewDomainGroup("admin", "/admin").
		Use(g.Auth, admin).
		GET("/stats", h.Reports.Stats).
		GET("/outbox/stats", h.Reports.OutboxStats)
	adminGroup.Group("users", "/users").
		GET("", h.Users.List).
		POST("", h.Users.Create).
		GET("/:id", h.Users.Get).
		PUT("/:id", h.Users.Update).
		DELETE("/:id", h.Users.Delete).
		PUT("/:id/role", h.Users.UpdateRole).
		POST("/:id/reset-password", h.Users.ResetPassword)

	profile := NewDomainGroup("profile", "/profile").
		Use(g.Auth).
		GET("", h.Users.GetProfile).
		PUT("", h.Users.UpdateProfile)

	services := NewDomainGroup("services", "/services").
		POST("", g.OptionalAuth, h.ServiceDesk.Submit).
		GET("", g.Auth, admin, h.ServiceDesk.List).
		GET("/mine", g.Auth, h.ServiceDesk.ListMine).
		PUT("/:id/status", g.Auth, admin, h.ServiceDesk.UpdateStatus)

	company := NewDomainGroup("company", "/company").
		GET("", h.System.Company)

	return []RouteRegistrar{authGroup, products, cart, orders, analytics, adminGroup, profile, services, company}
}
