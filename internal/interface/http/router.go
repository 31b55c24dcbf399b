package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/ai-astrology/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORS.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)
	router.NoMethod(func(c *gin.Context) {
		abortWithError(c, NewHTTPError(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil))
	})
	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "Not found", nil))
	})

	limited := rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger)
	router.POST("/generate-report", limited, handler.GenerateReport)

	api := router.Group("/api")
	{
		api.POST("/generate-report", limited, handler.GenerateReport)
		api.GET("/reports/runs", handler.ListRuns)
		api.GET("/reports/:id", handler.GetReport)
		api.GET("/providers", handler.Providers)
		api.GET("/ping", handler.Ping)
		api.GET("/test", handler.Health)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
