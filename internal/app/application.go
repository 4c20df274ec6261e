package app

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ak/brewlab/internal/app/middleware"
	"github.com/ak/brewlab/internal/domain/services"
	"github.com/ak/brewlab/internal/flowchart"
	"github.com/ak/brewlab/internal/infrastructure/config"
	"github.com/ak/brewlab/internal/infrastructure/database"
	"github.com/ak/brewlab/internal/infrastructure/repositories"
	"github.com/ak/brewlab/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Application holds all application dependencies and services
type Application struct {
	config   *config.Config
	logger   *logger.Logger
	mongodb  *database.MongoDB // nil with the memory storage driver
	repos    *repositories.Provider
	analysis services.AnalysisService
	catalog  services.CatalogService
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	router   *gin.Engine
}

// New creates a new Application instance. mongodb may be nil when repos are
// backed by the memory store.
func New(cfg *config.Config, log *logger.Logger, mongodb *database.MongoDB, repos *repositories.Provider, loader *flowchart.Loader) (*Application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var workflowMetrics *flowchart.Metrics
	if cfg.Metrics.Enabled {
		var err error
		workflowMetrics, err = flowchart.NewMetrics(registry)
		if err != nil {
			return nil, err
		}
	}

	app := &Application{
		config:   cfg,
		logger:   log,
		mongodb:  mongodb,
		repos:    repos,
		registry: registry,
		analysis: services.NewAnalysisService(loader, repos.Style, repos.Ingredient, workflowMetrics,
			services.AnalysisConfig{
				DefaultWorkflow: cfg.Workflows.DefaultName,
				MaxSteps:        cfg.Workflows.MaxSteps,
			}, log),
		catalog: services.NewCatalogService(repos.Ingredient, repos.Style),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brewlab",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
	}
	if err := registry.Register(app.requests); err != nil {
		return nil, err
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app.router = gin.New()

	app.router.Use(middleware.RequestID())
	app.router.Use(middleware.Recovery(log))
	app.router.Use(middleware.AccessLog(log))
	app.router.Use(app.metricsMiddleware())
	app.router.Use(app.corsMiddleware())

	app.setupRoutes()

	return app, nil
}

// Router returns the HTTP handler
func (a *Application) Router() http.Handler {
	return a.router
}

// setupRoutes configures all application routes
func (a *Application) setupRoutes() {
	a.router.GET("/health", a.healthCheck)
	a.router.GET("/ready", a.readinessCheck)
	if a.config.Metrics.Enabled {
		a.router.GET(a.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	auth := a.authMiddleware()

	v1 := a.router.Group("/api/v1")
	{
		v1.GET("/info", a.apiInfo)

		// Recipe analysis
		v1.POST("/recipes/analyze", a.analyzeRecipe)

		// Workflow catalog
		workflows := v1.Group("/workflows")
		{
			workflows.GET("", a.listWorkflows)
			workflows.POST("/validate", a.validateWorkflowDefinition)
			workflows.POST("/reload", auth, a.reloadWorkflows)
			workflows.GET("/:name", a.getWorkflow)
			workflows.GET("/:name/validate", a.validateWorkflow)
			workflows.POST("/:name/reload", auth, a.reloadWorkflow)
		}
		v1.GET("/strategies", a.listStrategies)
		v1.GET("/conditions", a.listConditions)

		// Ingredient catalog
		ingredients := v1.Group("/ingredients")
		{
			ingredients.GET("", a.listIngredients)
			ingredients.GET("/search", a.searchIngredients)
			ingredients.GET("/:id", a.getIngredient)
			ingredients.POST("", auth, a.createIngredient)
			ingredients.PUT("/:id", auth, a.updateIngredient)
			ingredients.DELETE("/:id", auth, a.deleteIngredient)
		}

		// Beer styles
		styles := v1.Group("/styles")
		{
			styles.GET("", a.listStyles)
			styles.GET("/:code", a.getStyle)
		}
	}
}

// Middleware

// authMiddleware guards write endpoints. With jwt.required off every
// request passes, which is only meant for local development.
func (a *Application) authMiddleware() gin.HandlerFunc {
	if !a.config.JWT.Required {
		return func(c *gin.Context) { c.Next() }
	}
	jwtAuth := middleware.JWTMiddleware(middleware.JWTConfig{
		Secret: a.config.JWT.Secret,
		Issuer: a.config.JWT.Issuer,
	})
	roles := middleware.RequireRole(middleware.RoleEditor, middleware.RoleAdmin)
	return func(c *gin.Context) {
		jwtAuth(c)
		if c.IsAborted() {
			return
		}
		roles(c)
	}
}

func (a *Application) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		a.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (a *Application) corsMiddleware() gin.HandlerFunc {
	cors := a.config.CORS
	methods := strings.Join(cors.AllowedMethods, ", ")
	headers := strings.Join(cors.AllowedHeaders, ", ")
	allowAll := len(cors.AllowedOrigins) == 0
	allowed := make(map[string]bool, len(cors.AllowedOrigins))
	for _, o := range cors.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "":
			origin = "*"
		case !allowAll && !allowed[origin]:
			a.logger.Debug("CORS origin rejected", zap.String("origin", origin))
			origin = ""
		}

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
