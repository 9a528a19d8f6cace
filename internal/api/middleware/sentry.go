package middleware

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/timmy/portrait/internal/logger"
)

const sentryFlushTimeout = 2 * time.Second

// Sentry returns the sentry-gin middleware. It repanics so Recover still
// writes the response.
func Sentry() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// Recover turns panics into a 500 response and reports them to Sentry when
// a hub is attached to the request.
func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.WithScope(func(scope *sentry.Scope) {
						scope.SetRequest(c.Request)
						scope.SetTag("request_id", logger.GetRequestID(ctx))
						hub.RecoverWithContext(ctx, err)
					})
				}

				logger.CtxError(ctx, "Panic recovered: error=%v, path=%s", err, c.Request.URL.Path)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": logger.GetRequestID(ctx),
				})
			}
		}()
		c.Next()
	}
}

// CaptureError reports err to the request's Sentry hub, or the global hub
// when the middleware is not installed.
func CaptureError(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
