package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/venue-pos-api/internal/config"
	domainRepo "github.com/sangkips/venue-pos-api/internal/domain/repository"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/handler"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/venue-pos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Roles allowed to void a whole bill.
var cancelRoles = []string{"manager", "admin"}

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Health  *handler.HealthHandler
	Bill    *handler.BillHandler
	Order   *handler.OrderHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Log             logrus.FieldLogger
	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
	// RateLimiter is created from Cfg.RateLimit when nil.
	RateLimiter *middleware.RateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Check)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewRateLimiter(RateLimiterConfig(deps.Cfg.RateLimit))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTManager))
	v1.Use(rateLimiter.Middleware())
	{
		registerBillRoutes(v1, h, deps)
		registerOrderRoutes(v1, h)
		registerPrinterRoutes(v1, h)
	}

	return router
}

// RateLimiterConfig converts the configured requests per duration into a
// token bucket.
func RateLimiterConfig(cfg config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	rl.EntryTTL = 10 * time.Minute
	return rl
}

func registerBillRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	bills := v1.Group("/bills")
	{
		bills.GET("", h.Bill.List)
		bills.POST("", h.Bill.Create)
		bills.GET("/:id", h.Bill.Get)
		bills.GET("/:id/items", h.Bill.Items)
		// a retried payment with the same key is answered from the record
		idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			TTL:  deps.Cfg.Billing.IdempotencyKeyTTL,
			Log:  deps.Log,
		})
		bills.POST("/:id/payments", idempotent, h.Bill.Pay)
		bills.POST("/:id/sessions/:session_id/payments", idempotent, h.Bill.PaySession)
		bills.POST("/:id/cancel", middleware.RequireRole(cancelRoles...), h.Bill.Cancel)
		bills.POST("/:id/refresh", h.Bill.Refresh)
		bills.POST("/:id/print", h.Printer.PrintBill)
		bills.POST("/:id/orders", h.Order.Create)
	}
}

func registerOrderRoutes(v1 *gin.RouterGroup, h *Handlers) {
	orders := v1.Group("/orders")
	{
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/items", h.Order.AddItems)
		orders.PATCH("/:id/items/:item_id", h.Order.UpdateItem)
		orders.DELETE("/:id/items/:item_id", h.Order.RemoveItem)
		orders.POST("/:id/cancel", h.Order.Cancel)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
