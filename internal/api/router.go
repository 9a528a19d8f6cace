package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/portrait/internal/api/handler"
	"github.com/timmy/portrait/internal/api/middleware"
	"github.com/timmy/portrait/internal/config"
	"github.com/timmy/portrait/internal/logger"
	"github.com/timmy/portrait/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	generationService *service.GenerationService,
	cfg *config.Config,
	log *logger.Logger,
	startedAt time.Time,
) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	if len(cfg.Server.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			log.WithError(err).Warn("Invalid trusted proxies, trusting none")
			_ = r.SetTrustedProxies(nil)
		}
	} else {
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.Recover())
	if cfg.Sentry.Enabled() {
		r.Use(middleware.Sentry())
	}
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler(startedAt)
	pageHandler := handler.NewPageHandler()
	generationHandler := handler.NewGenerationHandler(generationService)
	artifactHandler := handler.NewArtifactHandler(generationService)

	r.GET("/", pageHandler.Index)
	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/generate", generationHandler.Generate)
		v1.GET("/counter", generationHandler.Counter)

		v1.GET("/generations/recent", generationHandler.Recent)
		v1.GET("/generations/:number/download", artifactHandler.Download)
		v1.GET("/generations/:number/certificate", artifactHandler.Certificate)
	}

	return r
}
