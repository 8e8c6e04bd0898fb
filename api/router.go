package api

import (
	"net/http"

	"github.com/SChris-dev/EcoShop-API/api/health"
	"github.com/SChris-dev/EcoShop-API/api/middleware"
	"github.com/SChris-dev/EcoShop-API/api/order"
	"github.com/SChris-dev/EcoShop-API/api/product"
	"github.com/SChris-dev/EcoShop-API/api/response"
	"github.com/SChris-dev/EcoShop-API/config"
	"github.com/SChris-dev/EcoShop-API/pkg/errors"
	"github.com/SChris-dev/EcoShop-API/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Health  *health.Controller
	Product *product.Controller
	Order   *order.Controller
}

type Router struct {
	engine      *gin.Engine
	config      *config.Config
	controllers Controllers
	tokens      middleware.TokenParser
	metrics     *metrics.ServerMetrics
}

// NewRouter builds the engine and its global middleware chain. m may be
// nil when metrics are disabled.
func NewRouter(cfg *config.Config, controllers Controllers, tokens middleware.TokenParser, m *metrics.ServerMetrics) *Router {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	response.UseJSONFieldNames()

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	if m != nil {
		engine.Use(middleware.MetricsMiddleware(m))
	}
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:      engine,
		config:      cfg,
		controllers: controllers,
		tokens:      tokens,
		metrics:     m,
	}
}

func (r *Router) SetupRoutes() {
	r.controllers.Health.RegisterRoutes(r.engine)
	if r.metrics != nil {
		path := r.config.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(r.metrics.Handler()))
	}

	v1 := r.engine.Group("/api/v1")
	r.controllers.Product.RegisterPublicRoutes(v1)

	user := v1.Group("/user", middleware.AuthMiddleware(r.tokens))
	r.controllers.Order.RegisterUserRoutes(user)

	admin := v1.Group("/admin", middleware.AuthMiddleware(r.tokens), middleware.RequireAdmin())
	r.controllers.Product.RegisterAdminRoutes(admin)
	r.controllers.Order.RegisterAdminRoutes(admin)

	r.engine.NoRoute(func(c *gin.Context) {
		response.HandleError(c, errors.CodeNotFound, "Route not found.")
	})

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
