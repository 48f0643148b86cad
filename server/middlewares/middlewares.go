package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	Logger "github.com/hasibdev/portfeed/utils/log"
)

// RequestLog emits one structured log line per request once the handler
// chain finished.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		Logger.Log.WithFields(map[string]interface{}{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request handled")
	}
}
