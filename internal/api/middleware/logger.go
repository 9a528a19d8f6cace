package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/portrait/internal/gatekeeper"
	"github.com/timmy/portrait/internal/logger"
)

// ContextKeyCaller is the gin context key holding the hashed client address.
const ContextKeyCaller = "caller"

// LoggerMiddleware returns a Gin middleware that injects a request-scoped logger.
// The client address is hashed before it reaches any log line or the quota.
// Parameters:
//   - log: base logger to enrich with request fields.
//
// Returns:
//   - gin.HandlerFunc: middleware handler.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetHeader("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		caller := gatekeeper.HashCaller(c.ClientIP())

		ctx := log.WithContext(c.Request.Context())
		ctx = logger.WithFields(ctx, logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldCaller:    caller,
			logger.FieldComponent: "api",
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set("logger", logger.FromContext(ctx))
		c.Set(ContextKeyCaller, caller)
		c.Header("X-Request-ID", requestID)

		logger.CtxDebug(ctx, "Request started: method=%s, path=%s", c.Request.Method, path)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}

		entry := logger.With(logger.Fields{
			logger.FieldStatus:     status,
			logger.FieldDurationMs: latency.Milliseconds(),
			logger.FieldSize:       c.Writer.Size(),
		})
		switch {
		case status >= 500:
			entry.Error(c.Request.Context(), "Request failed: method=%s, path=%s", c.Request.Method, fullPath)
		case status >= 400:
			entry.Warn(c.Request.Context(), "Request rejected: method=%s, path=%s", c.Request.Method, fullPath)
		default:
			entry.Info(c.Request.Context(), "Request completed: method=%s, path=%s", c.Request.Method, fullPath)
		}
	}
}

// GetLogger extracts logger from Gin context or request context.
func GetLogger(c *gin.Context) *logger.Logger {
	if l, exists := c.Get("logger"); exists {
		if log, ok := l.(*logger.Logger); ok {
			return log
		}
	}
	return logger.FromContext(c.Request.Context())
}

// GetCaller returns the hashed client address set by LoggerMiddleware.
func GetCaller(c *gin.Context) string {
	if v := c.GetString(ContextKeyCaller); v != "" {
		return v
	}
	return gatekeeper.HashCaller(c.ClientIP())
}
