package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-ai-service/internal/api/handlers/health"
	recipeHandler "recipe-ai-service/internal/api/handlers/recipe"
	"recipe-ai-service/internal/api/middleware"
	"recipe-ai-service/internal/core/ai/cache"
	"recipe-ai-service/internal/core/ai/service"
	recipecore "recipe-ai-service/internal/core/recipe"
	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

const (
	// Overall request timeout, generous enough for the full retry budget.
	timeoutDuration = 120 * time.Second
	// Request body limit (1MB); recipe text and ingredient lists are small.
	maxBodySize = 1 << 20
)

// SetupRouter wires middleware, services, and routes.
func SetupRouter(cfg *config.Config, cacheStore cache.Cache) (*gin.Engine, error) {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	allowedOrigins := cfg.Auth.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Process-Time"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	// Services.
	var aiService *service.Service
	if cfg.OpenRouter.Enabled {
		aiService = service.NewService(cfg, cacheStore)
	}
	parseSvc := recipecore.NewParseService(cfg, aiService)

	var suggestionSvc *recipecore.SuggestionService
	if aiService != nil {
		suggestionSvc = recipecore.NewSuggestionService(aiService)
	}

	common.LogInfo("services initialized",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("backend_enabled", cfg.OpenRouter.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
	)

	// Request timeout and context injection.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("cache", cacheStore)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.Auth.APIKey))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg))
	{
		handler := recipeHandler.NewHandler(parseSvc, suggestionSvc)

		ai := api.Group("/ai")
		{
			ai.POST("/recipe-parsing", handler.HandleRecipeParsing)
			ai.POST("/recipe-suggestions", handler.HandleRecipeSuggestions)
		}
	}

	common.LogInfo("router setup completed",
		zap.Bool("auth_enabled", cfg.Auth.APIKey != ""),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
