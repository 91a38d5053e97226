// Package api wires the gin router and HTTP handlers.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/api/handlers"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// NewRouter builds the HTTP surface: health probes at the root, the
// run/report endpoints under /api/v1.
func NewRouter(health *handlers.HealthHandler, lineup *handlers.LineupHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/lineup/run", lineup.Run)
		v1.GET("/report/latest", lineup.LatestReport)
		v1.POST("/untouchables/refresh", lineup.RefreshUntouchables)
	}

	return router
}

// requestLogger logs each request through the shared structured logger.
func requestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Info("Request handled")
	}
}
