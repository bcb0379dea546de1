package http

import (
	"log/slog"

	"github.com/geocoder89/usershub/internal/config"
	"github.com/geocoder89/usershub/internal/http/handlers"
	"github.com/geocoder89/usershub/internal/http/middlewares"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/geocoder89/usershub/internal/redisclient"
	"github.com/geocoder89/usershub/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Store    store.Store
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	// Redis is optional; when set it backs the rate limiter and joins the
	// readiness checks.
	Redis *redisclient.Client
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.Cfg.OTelServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxBodyBytes))

	// health
	checks := map[string]handlers.PingFunc{
		"store": d.Store.Ping,
	}

	if d.Redis != nil {
		checks["redis"] = d.Redis.Ping
	}

	h := handlers.NewHealthHandler(checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// wire up the users api
	usersHandler := handlers.NewUsersHandler(d.Store, d.Cfg.StoreTimeout, log)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	if d.Cfg.RateLimit > 0 {
		api.Use(middlewares.RateLimit(newLimiter(d), middlewares.KeyByIP, log))
	}

	api.GET("/users", usersHandler.ListUsers)
	api.GET("/users/:id", usersHandler.GetUser)
	api.POST("/users", usersHandler.CreateUser)
	api.PUT("/users/:id", usersHandler.UpdateUser)
	api.DELETE("/users/:id", usersHandler.DeleteUser)

	return r
}

func newLimiter(d Deps) middlewares.Limiter {
	if d.Redis != nil {
		return middlewares.NewRedisLimiter(d.Redis.Raw(), d.Cfg.RateLimit, d.Cfg.RateLimitWindow)
	}

	return middlewares.NewMemoryLimiter(d.Cfg.RateLimit, d.Cfg.RateLimitWindow)
}
