// Package httpapi exposes the marker service over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InitRoutes builds the router. Mode is a gin mode; "release" silences gin's
// debug output.
func InitRoutes(h *Handler, mode string, log logrus.FieldLogger) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), Logger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "image-marker",
		})
	})

	api := router.Group("/api/v1/mark")
	{
		api.POST("/text", h.MarkText)
		api.POST("/image", h.MarkImage)
		api.POST("/objects", h.MarkObjects)
	}

	return router
}

// Logger logs one line per request, at error level for 4xx and 5xx.
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start),
			"client_ip": c.ClientIP(),
		})
		if kind, ok := c.Get(errorKindKey); ok {
			entry = entry.WithField("kind", kind)
		}

		if c.Writer.Status() >= 400 {
			entry.Error("request failed")
		} else {
			entry.Info("request processed")
		}
	}
}
