package router

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chronolog/internal/handler"
	"github.com/chronolog/internal/metrics"
)

const sessionName = "chronolog_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), metrics.Middleware())

	// 配置会话中间件，用于记录本次会话忽略的预测
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/entries", api.ListEntries)
		apiGroup.POST("/entries", api.AppendEntry)
		apiGroup.PUT("/entries/:start", api.EditEntry)
		apiGroup.DELETE("/entries/:start", api.DeleteEntry)

		apiGroup.GET("/suggestions", api.Suggestions)
		apiGroup.GET("/prediction", api.Prediction)
		apiGroup.POST("/prediction/dismiss", api.DismissPrediction)

		apiGroup.GET("/habits/:activity", api.GetHabit)
		apiGroup.GET("/insights", api.Insights)
		apiGroup.GET("/daily", api.Daily)
		apiGroup.GET("/balance", api.Balance)
		apiGroup.GET("/achievements", api.Achievements)
		apiGroup.GET("/dashboard", api.Dashboard)
		apiGroup.GET("/report", api.WeeklyReport)

		apiGroup.GET("/classify", api.Classify)
		apiGroup.GET("/categories", api.Categories)
		apiGroup.POST("/feedback", api.RecordFeedback)
		apiGroup.GET("/feedback/stats", api.FeedbackStats)
		apiGroup.DELETE("/feedback", api.ClearFeedback)
	}

	return r
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Debug()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
