package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request and recovers from panics with a JSON
// error response instead of a dropped connection.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.WithFields(requestFields(c, start)).WithFields(logrus.Fields{
					"panic": fmt.Sprintf("%v", recovered),
					"stack": string(debug.Stack()),
				}).Error("request panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			fields := requestFields(c, start)
			switch {
			case c.Writer.Status() >= http.StatusInternalServerError:
				log.WithFields(fields).Error("request failed")
			case c.Writer.Status() >= http.StatusBadRequest:
				log.WithFields(fields).Warn("request rejected")
			default:
				log.WithFields(fields).Info("request")
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) logrus.Fields {
	return logrus.Fields{
		"status":    c.Writer.Status(),
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"query":     c.Request.URL.RawQuery,
		"client_ip": c.ClientIP(),
		"user_id":   c.GetInt64("user_id"),
		"role":      c.GetString("role"),
		"latency":   time.Since(start).String(),
	}
}
