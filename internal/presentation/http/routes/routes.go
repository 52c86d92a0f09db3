package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miracle7662/RestaurantNew-sub004/internal/application/service"
	"github.com/miracle7662/RestaurantNew-sub004/internal/config"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/enum"
	domainRepo "github.com/miracle7662/RestaurantNew-sub004/internal/domain/repository"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/handler"
	"github.com/miracle7662/RestaurantNew-sub004/internal/presentation/http/middleware"
	"github.com/miracle7662/RestaurantNew-sub004/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Bill       *handler.BillHandler
	Settlement *handler.SettlementHandler
	Handover   *handler.HandoverHandler
	Printer    *handler.PrinterHandler
	Tax        *handler.TaxHandler
	Dashboard  *handler.DashboardHandler
	Kitchen    *handler.KitchenHandler
	Masters    *service.MasterServices
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	OutletRepo      domainRepo.MasterRepository[entity.Outlet]
	RateLimiter     *middleware.RateLimiter
}

// NewRateLimiter builds the per-caller limiter from the configured window
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.RateLimiter {
	limiterCfg := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		limiterCfg.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		limiterCfg.BurstSize = cfg.Requests
	}
	limiterCfg.CleanupInterval = 5 * time.Minute
	limiterCfg.EntryTTL = 10 * time.Minute
	return middleware.NewRateLimiter(limiterCfg)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// Kitchen display; the access token travels in the query string
	router.GET("/ws/kitchen", h.Kitchen.Connect)

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = NewRateLimiter(deps.Cfg.RateLimit)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h, rateLimiter)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.OutletMiddleware(deps.OutletRepo))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers, rateLimiter *middleware.RateLimiter) {
	auth := v1.Group("/auth")
	auth.Use(rateLimiter.Middleware())
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo})

	// Auth/Profile routes
	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.PUT("/auth/change-password", h.Auth.ChangePassword)
	protected.POST("/auth/verify-password", h.Auth.VerifyPassword)

	// Dashboard
	protected.GET("/dashboard", middleware.RequirePermission(enum.PermViewReports, enum.PermManageBills), h.Dashboard.GetStats)

	// Users (Admin)
	registerUserRoutes(protected, h)

	// Master data
	registerMasterRoutes(protected, h)

	// Tax rates of an outlet
	protected.GET("/outlets/:id/tax-rates", h.Tax.Rates)

	// Orders, KOTs and bills
	registerBillRoutes(protected, h, idempotent)

	// Settlements
	registerSettlementRoutes(protected, h)

	// Handover
	registerHandoverRoutes(protected, h, idempotent)

	// Printer
	registerPrinterRoutes(protected, h)
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequirePermission(enum.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.PUT("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}

	protected.GET("/roles", middleware.RequirePermission(enum.PermManageUsers), h.User.ListRoles)
	protected.GET("/permissions", middleware.RequirePermission(enum.PermManageUsers), h.User.ListPermissions)
}

// registrar is a master-data handler able to mount its own CRUD routes
type registrar interface {
	Register(group *gin.RouterGroup, write ...gin.HandlerFunc)
}

func registerMasterRoutes(protected *gin.RouterGroup, h *Handlers) {
	m := h.Masters
	masters := requirePerm(enum.PermManageMasters)

	resources := []struct {
		path    string
		handler registrar
		write   gin.HandlerFunc
	}{
		{"/countries", handler.NewMasterHandler(m.Countries), masters},
		{"/states", handler.NewMasterHandler(m.States), masters},
		{"/cities", handler.NewMasterHandler(m.Cities), masters},
		{"/brands", handler.NewMasterHandler(m.Brands), masters},
		{"/hotels", handler.NewMasterHandler(m.Hotels), masters},
		{"/outlets", handler.NewMasterHandler(m.Outlets), masters},
		{"/departments", handler.NewMasterHandler(m.Departments), masters},
		{"/tables", handler.NewMasterHandler(m.Tables), masters},
		{"/tax-groups", handler.NewMasterHandler(m.TaxGroups), masters},
		{"/kitchen-main-groups", handler.NewMasterHandler(m.KitchenMainGroups), masters},
		{"/kitchen-categories", handler.NewMasterHandler(m.KitchenCategories), masters},
		{"/kitchen-sub-categories", handler.NewMasterHandler(m.KitchenSubCategories), masters},
		{"/menu-items", handler.NewMasterHandler(m.MenuItems), masters},
		{"/units", handler.NewMasterHandler(m.Units), masters},
		{"/warehouses", handler.NewMasterHandler(m.Warehouses), masters},
		{"/designations", handler.NewMasterHandler(m.Designations), masters},
		{"/user-types", handler.NewMasterHandler(m.UserTypes), masters},
		{"/customers", handler.NewMasterHandler(m.Customers), requirePerm(enum.PermManageMasters, enum.PermPunchKOT)},
		{"/payment-modes", handler.NewMasterHandler(m.PaymentModes), masters},
		{"/printer-settings", handler.NewMasterHandler(m.PrinterSettings), requirePerm(enum.PermManagePrinters)},
	}
	for _, r := range resources {
		r.handler.Register(protected.Group(r.path), r.write)
	}
}

func requirePerm(perms ...string) gin.HandlerFunc {
	return middleware.RequirePermission(perms...)
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	bills := protected.Group("/TAxnTrnbill")

	punch := requirePerm(enum.PermPunchKOT)
	manage := requirePerm(enum.PermManageBills)
	{
		bills.GET("", h.Bill.List)
		bills.GET("/:id", h.Bill.Get)
		bills.GET("/table/:tableId", h.Bill.ActiveByTable)

		bills.POST("", punch, idempotent, h.Bill.CreateBill)
		bills.POST("/kot", punch, idempotent, h.Bill.CreateKOT)
		bills.POST("/reverse-kot", punch, idempotent, h.Bill.CreateReverseKOT)

		bills.POST("/discount", manage, idempotent, h.Bill.ApplyDiscount)
		bills.POST("/nc", manage, idempotent, h.Bill.SetNC)
		bills.POST("/:id/mark-billed", requirePerm(enum.PermManageBills, enum.PermSettleBills), idempotent, h.Bill.MarkBilled)
		bills.POST("/transfer", requirePerm(enum.PermManageBills, enum.PermPunchKOT), idempotent, h.Bill.TransferTable)

		bills.POST("/settle", requirePerm(enum.PermSettleBills), idempotent, h.Bill.Settle)
		// The approval token carries the supervisor's reverse permission
		bills.POST("/reverse", requirePerm(enum.PermManageBills, enum.PermReverseBills), idempotent, h.Bill.ReverseBill)
	}
}

func registerSettlementRoutes(protected *gin.RouterGroup, h *Handlers) {
	settlements := protected.Group("/settlements")
	settlements.Use(middleware.RequirePermission(enum.PermViewReports, enum.PermEditSettlement))
	{
		settlements.GET("", h.Settlement.List)
		settlements.GET("/summary", h.Settlement.Summary)
		settlements.GET("/logs", h.Settlement.Logs)
		settlements.GET("/export", h.Settlement.Export)
		settlements.POST("/replace", requirePerm(enum.PermEditSettlement), h.Settlement.Replace)
	}
}

func registerHandoverRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	handover := protected.Group("/handover")
	handover.Use(middleware.RequirePermission(enum.PermManageHandover, enum.PermViewReports))
	{
		handover.GET("/summary", h.Handover.Summary)
		handover.GET("", h.Handover.List)
		handover.POST("", requirePerm(enum.PermManageHandover), idempotent, h.Handover.Create)
		handover.GET("/:id", h.Handover.Get)
		handover.GET("/:id/export", h.Handover.Export)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", requirePerm(enum.PermManagePrinters), h.Printer.TestPrint)
		printerGroup.POST("/reprint", requirePerm(enum.PermManageBills, enum.PermPunchKOT), h.Printer.Reprint)
	}
}
