package router

import (
	"github.com/ajay-nishad/GST-Invoices-sub001/config"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/controller"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controllers groups every handler the route table binds.
type Controllers struct {
	Auth         *controller.AuthController
	Business     *controller.BusinessController
	Customer     *controller.CustomerController
	Item         *controller.ItemController
	Invoice      *controller.InvoiceController
	Analytics    *controller.AnalyticsController
	Subscription *controller.SubscriptionController
	Page         *controller.PageController
	Health       *controller.HealthController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	plans          middleware.PlanResolver
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	plans middleware.PlanResolver,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		plans:          plans,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.Metrics())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.NewRouteGate(r.authMiddleware, r.plans).Handle())

	ctl := r.controllers
	auth := r.authMiddleware.Authenticate()

	router.GET("/health", ctl.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Browser pages; access is decided by the route gate above.
	router.GET("/dashboard", ctl.Page.Dashboard)
	router.GET("/analytics", ctl.Page.Analytics)
	router.GET("/settings", ctl.Page.Settings)
	router.GET("/pricing", ctl.Page.Pricing)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", ctl.Auth.SignUp)
			authGroup.POST("/signin", ctl.Auth.SignIn)
			authGroup.POST("/refresh", ctl.Auth.Refresh)
			authGroup.POST("/forgot-password", ctl.Auth.ForgotPassword)
			authGroup.POST("/reset-password", ctl.Auth.ResetPassword)
			authGroup.POST("/signout", auth, ctl.Auth.SignOut)
			authGroup.GET("/me", auth, ctl.Auth.Me)
		}

		// Signature-verified rather than session-authenticated.
		v1.POST("/webhooks/razorpay", ctl.Subscription.Webhook)

		protected := v1.Group("")
		protected.Use(auth, middleware.RequirePlan(r.plans))
		{
			businesses := protected.Group("/businesses")
			{
				businesses.GET("", ctl.Business.List)
				businesses.POST("", ctl.Business.Create)
				businesses.GET("/:id", ctl.Business.Get)
				businesses.PUT("/:id", ctl.Business.Update)
				businesses.DELETE("/:id", ctl.Business.Delete)
				businesses.PUT("/:id/primary", ctl.Business.SetPrimary)
			}

			customers := protected.Group("/customers")
			{
				customers.GET("", ctl.Customer.List)
				customers.POST("", ctl.Customer.Create)
				customers.GET("/:id", ctl.Customer.Get)
				customers.PUT("/:id", ctl.Customer.Update)
				customers.DELETE("/:id", ctl.Customer.Delete)
			}

			items := protected.Group("/items")
			{
				items.GET("", ctl.Item.List)
				items.POST("", ctl.Item.Create)
				items.POST("/import", ctl.Item.Import)
				items.GET("/import/template", ctl.Item.Template)
				items.GET("/:id", ctl.Item.Get)
				items.PUT("/:id", ctl.Item.Update)
				items.DELETE("/:id", ctl.Item.Delete)
			}

			invoices := protected.Group("/invoices")
			{
				invoices.GET("", ctl.Invoice.List)
				invoices.POST("", ctl.Invoice.Create)
				invoices.GET("/:id", ctl.Invoice.Get)
				invoices.PUT("/:id", ctl.Invoice.Update)
				invoices.DELETE("/:id", ctl.Invoice.Delete)
				invoices.PUT("/:id/status", ctl.Invoice.UpdateStatus)
				invoices.GET("/:id/pdf", ctl.Invoice.PDF)
				invoices.GET("/:id/excel", ctl.Invoice.Excel)
				invoices.POST("/:id/archive", ctl.Invoice.Archive)
				invoices.POST("/:id/email", ctl.Invoice.SendEmail)
				invoices.GET("/:id/emails", ctl.Invoice.ListEmails)
			}

			protected.POST("/emails/:id/retry", ctl.Invoice.RetryEmail)
			protected.GET("/dashboard/summary", ctl.Analytics.Summary)

			// premium, enforced by RequirePlan
			protected.GET("/analytics", ctl.Analytics.Analytics)
			protected.GET("/exports/invoices.xlsx", ctl.Analytics.ExportInvoices)

			subscriptions := protected.Group("/subscriptions")
			{
				subscriptions.POST("/checkout", ctl.Subscription.Checkout)
				subscriptions.GET("/status", ctl.Subscription.Status)
				subscriptions.POST("/cancel", ctl.Subscription.Cancel)
				subscriptions.POST("/renew", ctl.Subscription.Renew)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
