package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/colmado-pos/internal/config"
	"github.com/sangkips/colmado-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/colmado-pos/internal/domain/repository"
	"github.com/sangkips/colmado-pos/internal/presentation/http/handler"
	"github.com/sangkips/colmado-pos/internal/presentation/http/middleware"
	"github.com/sangkips/colmado-pos/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Customer *handler.CustomerHandler
	Supplier *handler.SupplierHandler
	Invoice  *handler.InvoiceHandler
	Checkout *handler.CheckoutHandler
	Settings *handler.SettingsHandler
	Printer  *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	// Stop ends background cleanup; nil runs it for the life of the process
	Stop <-chan struct{}
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	rateLimiter := middleware.NewUserRateLimiter(deps.Cfg.RateLimit)
	go rateLimiter.Run(5*time.Minute, deps.Stop)

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		public.Use(rateLimiter.Middleware())
		registerAuthRoutes(public, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())
		protected.Use(middleware.Idempotency(deps.IdempotencyRepo))

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(rg *gin.RouterGroup, h *Handlers) {
	perm := middleware.RequirePermission

	me := rg.Group("/auth")
	{
		me.GET("/me", h.Auth.Me)
		me.POST("/change-password", h.Auth.ChangePassword)
	}

	users := rg.Group("/users", perm(entity.PermissionManageUsers))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/roles", h.User.Roles)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id", h.User.Update)
	}

	// Catalog reads are open to every operator; the register needs them.
	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/code/:code", h.Product.GetByCode)
		products.GET("/:id", h.Product.Get)
		products.POST("", perm(entity.PermissionManageProducts), h.Product.Create)
		products.POST("/import", perm(entity.PermissionManageProducts), h.Product.Import)
		products.PUT("/:id", perm(entity.PermissionManageProducts), h.Product.Update)
		products.POST("/:id/stock", perm(entity.PermissionManageProducts), h.Product.AdjustStock)
		products.DELETE("/:id", perm(entity.PermissionManageProducts), h.Product.Delete)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.POST("", perm(entity.PermissionManageProducts), h.Category.Create)
		categories.DELETE("/:id", perm(entity.PermissionManageProducts), h.Category.Delete)
	}

	customers := rg.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.GET("/search", h.Customer.Search)
		customers.GET("/stats", h.Customer.Stats)
		customers.GET("/debtors", h.Customer.Debtors)
		customers.GET("/:id", h.Customer.Get)
		customers.GET("/:id/payments", h.Customer.Payments)
		customers.POST("", perm(entity.PermissionManageCustomers), h.Customer.Create)
		customers.PUT("/:id", perm(entity.PermissionManageCustomers), h.Customer.Update)
		customers.DELETE("/:id", perm(entity.PermissionManageCustomers), h.Customer.Delete)
		customers.POST("/:id/payments", perm(entity.PermissionCollectDebt), h.Customer.Pay)
		customers.POST("/:id/settle", perm(entity.PermissionCollectDebt), h.Customer.Settle)
	}

	suppliers := rg.Group("/suppliers", perm(entity.PermissionManageSuppliers))
	{
		suppliers.GET("", h.Supplier.List)
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.DELETE("/:id", h.Supplier.Delete)
		suppliers.GET("/:id/transactions", h.Supplier.Transactions)
		suppliers.POST("/:id/transactions", h.Supplier.RecordTransaction)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", perm(entity.PermissionSell), h.Invoice.Create)
		invoices.GET("", perm(entity.PermissionViewSales), h.Invoice.List)
		invoices.GET("/summary", perm(entity.PermissionViewSales), h.Invoice.Summary)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/receipt", h.Invoice.Receipt)
		invoices.POST("/:id/void", perm(entity.PermissionViewSales), h.Invoice.Void)
	}

	sales := rg.Group("/checkout", perm(entity.PermissionSell))
	{
		sales.POST("", h.Checkout.Create)
		sales.GET("/:id", h.Checkout.Get)
		sales.DELETE("/:id", h.Checkout.Discard)
		sales.POST("/:id/lines", h.Checkout.AddLine)
		sales.PATCH("/:id/lines/:lineID", h.Checkout.UpdateLine)
		sales.DELETE("/:id/lines/:lineID", h.Checkout.RemoveLine)
		sales.PUT("/:id/tax", h.Checkout.SetTax)
		sales.PUT("/:id/customer", h.Checkout.SetCustomer)
		sales.PUT("/:id/payment", h.Checkout.SelectPayment)
		sales.PUT("/:id/payment/cash", h.Checkout.SetCashReceived)
		sales.PUT("/:id/payment/credit", h.Checkout.SetCreditCustomer)
		sales.POST("/:id/payment/terminal", h.Checkout.RunTerminal)
		sales.GET("/:id/preview", h.Checkout.Preview)
		sales.POST("/:id/submit", h.Checkout.Submit)
	}

	settings := rg.Group("/settings")
	{
		settings.GET("", h.Settings.GetSettings)
		settings.PUT("", perm(entity.PermissionManageSettings), h.Settings.UpdateSettings)
	}

	printer := rg.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", perm(entity.PermissionManageSettings), h.Printer.TestPrint)
		printer.POST("/invoices/:id", h.Printer.PrintInvoice)
	}
}
