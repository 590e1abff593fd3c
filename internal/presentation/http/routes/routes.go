package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-api/internal/config"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Bill    *handler.BillHandler
	Chair   *handler.ChairHandler
	Package *handler.PackageHandler
	Cash    *handler.CashHandler
	Event   *handler.EventHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.BranchRateLimiter
	Logger          logrus.FieldLogger
	// Ping reports storage health; nil means always healthy
	Ping func() error
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			if err := deps.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unavailable",
					"service": deps.Cfg.App.Name,
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.BranchMiddleware())

		rateLimiter := deps.RateLimiter
		if rateLimiter == nil {
			rateLimiter = NewRateLimiter(&deps.Cfg.RateLimit)
		}
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

// NewRateLimiter builds the per-branch limiter from config
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.BranchRateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlCfg.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlCfg.BurstSize = cfg.Requests
	}
	rlCfg.CleanupInterval = 5 * time.Minute
	rlCfg.EntryTTL = 10 * time.Minute
	return middleware.NewBranchRateLimiter(rlCfg)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idem := middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		TTL:    deps.Cfg.Billing.IdempotencyTTL,
		Logger: deps.Logger,
	}

	// Bills
	registerBillRoutes(protected, h, idem)

	// Chairs
	registerChairRoutes(protected, h)

	// Packages
	registerPackageRoutes(protected, h)

	// Cash drawer
	registerCashRoutes(protected, h, idem)

	// Live board
	protected.GET("/events", h.Event.Stream)
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	bills := protected.Group("/bills")
	bills.Use(middleware.RequirePermission("manage-billing"))
	{
		bills.GET("", h.Bill.List)
		// Intake and settlement must not run twice for a double-submitted form
		bills.POST("", middleware.IdempotencyRequired(idem), h.Bill.Create)
		bills.GET("/:id", h.Bill.Get)
		bills.POST("/:id/confirm", h.Bill.Confirm)
		bills.POST("/:id/complete", middleware.IdempotencyRequired(idem), h.Bill.Complete)
		bills.POST("/:id/cancel", middleware.Idempotency(idem), h.Bill.Cancel)
		bills.PUT("/:id/items/:item_id/status", h.Bill.UpdateItemStatus)
	}
}

func registerChairRoutes(protected *gin.RouterGroup, h *Handlers) {
	chairs := protected.Group("/chairs")
	chairs.GET("", h.Chair.List)

	manage := chairs.Group("")
	manage.Use(middleware.RequirePermission("manage-chairs"))
	{
		manage.POST("", h.Chair.Create)
		manage.POST("/:id/assign", h.Chair.Assign)
		manage.POST("/:id/release", h.Chair.Release)
		manage.PUT("/:id/status", h.Chair.SetStatus)
	}
}

func registerPackageRoutes(protected *gin.RouterGroup, h *Handlers) {
	packages := protected.Group("/packages")
	packages.Use(middleware.RequirePermission("view-packages"))
	{
		packages.POST("/pricing", h.Package.ComputePricing)
		packages.GET("/:id/pricing", h.Package.Pricing)
	}
	protected.POST("/packages", middleware.RequirePermission("manage-packages"), h.Package.Create)
}

func registerCashRoutes(protected *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	cash := protected.Group("/cash")
	cash.Use(middleware.RequirePermission("manage-cash"))
	{
		cash.GET("/expected", h.Cash.Expected)
		cash.GET("/reconciliations", h.Cash.ListReconciliations)
		cash.POST("/reconciliations", middleware.Idempotency(idem), h.Cash.RecordReconciliation)
		cash.GET("/deposits", h.Cash.ListDeposits)
		cash.POST("/deposits", middleware.Idempotency(idem), h.Cash.RecordDeposit)
		cash.POST("/inflows", middleware.Idempotency(idem), h.Cash.RecordInflow)
		cash.POST("/expenses", middleware.Idempotency(idem), h.Cash.RecordExpense)
	}
}
