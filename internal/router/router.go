package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/enemsprint/sprint-backend/internal/config"
	"github.com/enemsprint/sprint-backend/internal/handler"
	"github.com/enemsprint/sprint-backend/internal/middleware"
	"github.com/enemsprint/sprint-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	History *handler.HistoryHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Generous per-IP limit; answer selections arrive one keypress at a time.
	apiLimiter := middleware.NewRateLimiter(300, time.Minute)

	// ─── 1. Attempt Group ──────────────────────────────────────────────
	attemptAPI := router.Group("/api/v1/attempt")
	attemptAPI.Use(apiLimiter.Middleware())
	{
		attemptAPI.POST("/start", handlers.Attempt.StartAttempt)
		attemptAPI.PUT("/questions", handlers.Attempt.SetQuestions)
		attemptAPI.PUT("/answer", handlers.Attempt.Answer)
		attemptAPI.POST("/finish", handlers.Attempt.Finish)
		attemptAPI.POST("/retake", handlers.Attempt.Retake)
		attemptAPI.GET("/state", handlers.Attempt.GetState)
		attemptAPI.GET("/results", handlers.Attempt.GetResults)
	}

	// ─── 2. History Group ──────────────────────────────────────────────
	historyAPI := router.Group("/api/v1/history")
	historyAPI.Use(apiLimiter.Middleware())
	{
		historyAPI.GET("", handlers.History.ListAttempts)
		historyAPI.DELETE("", handlers.History.ClearHistory)
		historyAPI.GET("/summary", handlers.History.GetSummary)
		historyAPI.DELETE("/:attempt_id", handlers.History.DeleteAttempt)
		historyAPI.GET("/tests/:test_code/best", handlers.History.GetBestAttempt)
		historyAPI.GET("/tests/:test_code/last", handlers.History.GetLastAttempt)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	{
		wsGroup.GET("/attempt/stream", handlers.WS.AttemptStream)
	}

	return router
}
