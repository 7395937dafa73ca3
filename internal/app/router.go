package app

import (
	"github.com/gin-gonic/gin"

	authHandler "service-admin/internal/handlers/auth"
	catalogHandler "service-admin/internal/handlers/catalog"
	feedHandler "service-admin/internal/handlers/feed"
	planHandler "service-admin/internal/handlers/plan"
	subscriptionHandler "service-admin/internal/handlers/subscription"
	"service-admin/internal/middleware"
)

type Handlers struct {
	Auth           *authHandler.Handler
	Subscription   *subscriptionHandler.Handler
	Plan           *planHandler.Handler
	Catalog        *catalogHandler.Handler
	Feed           *feedHandler.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.Auth.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.Auth.Logout)
		authProtected.GET("/me", h.Auth.Me)
	}

	admins := api.Group("/admins")
	admins.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireSuperAdmin())
	{
		admins.POST("", h.Auth.CreateAdmin)
	}

	// ==================== Event Feed ====================
	r.GET("/ws", h.AuthMiddleware.Auth(), h.Feed.Connect)

	feedStats := api.Group("/feed")
	feedStats.Use(h.AuthMiddleware.Auth())
	{
		feedStats.GET("/stats", h.Feed.Stats)
	}

	// ==================== Audit Logs ====================
	logs := api.Group("/logs")
	logs.Use(h.AuthMiddleware.Auth())
	{
		logs.GET("", h.Subscription.Logs)
	}

	// ==================== Subscriptions ====================
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(h.AuthMiddleware.Auth())
	{
		subscriptions.POST("", h.Subscription.Subscribe)
		subscriptions.GET("", h.Subscription.List)
		subscriptions.GET("/:id", h.Subscription.Get)
		subscriptions.GET("/:id/payments", h.Subscription.Payments)
		subscriptions.POST("/:id/payments/:payment_id/confirm", h.Subscription.ConfirmPayment)
		subscriptions.GET("/:id/logs", h.Subscription.SubscriptionLogs)

		subscriptions.POST("/:id/renew", h.Subscription.Renew)
		subscriptions.POST("/:id/extend", h.Subscription.Extend)
		subscriptions.POST("/:id/upgrade", h.Subscription.Upgrade)
		subscriptions.POST("/:id/downgrade", h.Subscription.Downgrade)

		subscriptions.PUT("/:id/activate", h.Subscription.Activate)
		subscriptions.PUT("/:id/suspend", h.Subscription.Suspend)
		subscriptions.PUT("/:id/cancel", h.Subscription.Cancel)
		subscriptions.PUT("/:id/reactivate", h.Subscription.Reactivate)

		subscriptions.POST("/:id/refunds", h.Subscription.Refund)
		subscriptions.GET("/:id/refunds", h.Subscription.RefundHistory)
		subscriptions.GET("/:id/refunds/refundable", h.Subscription.RefundableSummary)
		subscriptions.POST("/:id/refunds/:payment_id/cancel", h.Subscription.CancelRefund)
	}

	// ==================== Plans ====================
	plans := api.Group("/plans")
	plans.Use(h.AuthMiddleware.Auth())
	{
		plans.POST("", h.Plan.Create)
		plans.GET("", h.Plan.List)
		plans.GET("/:id", h.Plan.Get)
		plans.PUT("/:id", h.Plan.Update)
		plans.PUT("/:id/activate", h.Plan.Activate)
		plans.DELETE("/:id", h.Plan.Delete)
	}

	// ==================== Services & Categories ====================
	services := api.Group("/services")
	services.Use(h.AuthMiddleware.Auth())
	{
		services.POST("", h.Catalog.CreateService)
		services.GET("", h.Catalog.ListServices)
		services.GET("/:id", h.Catalog.GetService)
		services.PUT("/:id", h.Catalog.UpdateService)
		services.DELETE("/:id", h.Catalog.DeleteService)

		services.POST("/:id/prices", h.Catalog.CreatePrice)
		services.GET("/:id/prices", h.Catalog.ListPrices)
	}

	prices := api.Group("/prices")
	prices.Use(h.AuthMiddleware.Auth())
	{
		prices.PUT("/:price_id", h.Catalog.UpdatePrice)
		prices.DELETE("/:price_id", h.Catalog.DeletePrice)
	}

	categories := api.Group("/categories")
	categories.Use(h.AuthMiddleware.Auth())
	{
		categories.POST("", h.Catalog.CreateCategory)
		categories.GET("", h.Catalog.ListCategories)
		categories.PUT("/:id", h.Catalog.UpdateCategory)
		categories.DELETE("/:id", h.Catalog.DeleteCategory)
	}
}
