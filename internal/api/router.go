package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"careernavigator/internal/api/middleware"
	"careernavigator/internal/config"
	"careernavigator/internal/metrics"
)

// NewRouter 构建 Gin 路由引擎：关联 ID、请求日志、指标采集与健康检查。
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(cfg.API.GinMode)

	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		gin.Recovery(),
		metrics.GinMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
