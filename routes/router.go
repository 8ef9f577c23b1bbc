package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spareshop-api/controllers"
	"spareshop-api/metrics"
	"spareshop-api/middlewares"
	"spareshop-api/models"
	"spareshop-api/utils/token"
)

// Handlers groups the controllers and shared middleware dependencies the
// router needs.
type Handlers struct {
	Auth       *controllers.AuthController
	Spareparts *controllers.SparepartController
	Orders     *controllers.OrderController
	Purchases  *controllers.PurchaseController
	Dashboard  *controllers.DashboardController

	Tokens      *token.Manager
	AuthLimiter *middlewares.RateLimiter
	UploadDir   string
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.Static("/uploads", h.UploadDir)

	api := r.Group("/api")

	// Auth
	auth := api.Group("")
	if h.AuthLimiter != nil {
		auth.Use(h.AuthLimiter.Handler())
	}
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/token", h.Auth.Token)
	}
	api.GET("/logout", h.Auth.Logout)

	requireAuth := middlewares.AuthMiddleware(h.Tokens)
	adminOnly := middlewares.RoleMiddleware(models.RoleAdmin)

	// Spareparts
	spareparts := api.Group("/spareparts")
	spareparts.Use(requireAuth)
	{
		spareparts.GET("", h.Spareparts.GetSpareparts)
		spareparts.GET("/:id", h.Spareparts.GetSparepartByID)
		spareparts.POST("", adminOnly, h.Spareparts.CreateSparepart)
		spareparts.PUT("/:id", adminOnly, h.Spareparts.UpdateSparepart)
		spareparts.DELETE("/:id", adminOnly, h.Spareparts.DeleteSparepart)
	}

	// Cart
	cart := api.Group("/cart")
	cart.Use(requireAuth)
	{
		cart.POST("/checkout", h.Orders.Checkout)
		cart.GET("/:userId", h.Orders.GetCart)
		cart.POST("", h.Orders.AddToCart)
		cart.PUT("/:id", h.Orders.UpdateCartItem)
		cart.DELETE("/:id", h.Orders.RemoveCartItem)
	}

	// Orders
	orders := api.Group("/orders")
	orders.Use(requireAuth)
	{
		orders.GET("/:userId", h.Orders.GetOrders)
		orders.PUT("/:id/pay", h.Orders.PayOrder)
		orders.PUT("/:id/cancel", h.Orders.CancelOrder)
	}

	// Purchase form
	pembelian := api.Group("/pembelian")
	pembelian.Use(requireAuth)
	{
		pembelian.GET("/detail/:id", h.Purchases.GetDetail)
		pembelian.GET("/:userId", h.Purchases.GetByUser)
		pembelian.POST("", h.Purchases.Create)
		pembelian.PUT("/:id", h.Purchases.UpdateStatus)
		pembelian.DELETE("/:id", h.Purchases.Delete)
	}

	// Admin
	admin := api.Group("")
	admin.Use(requireAuth, adminOnly)
	{
		admin.GET("/dashboard", h.Dashboard.GetDashboard)
		admin.GET("/users", h.Dashboard.GetUsers)
		admin.GET("/audit-logs", h.Dashboard.GetAuditLogs)
	}
}
