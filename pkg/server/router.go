package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Yoshiben/coeliacs-like-beer-too/configs"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/auth"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/cache"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/repository"
	"github.com/Yoshiben/coeliacs-like-beer-too/pkg/validation"
)

// NewRouter assembles the public directory endpoints, the submission
// endpoint, and the JWT-guarded admin review endpoints.
func NewRouter(conf *configs.Config, repo *repository.Repository, redisCache *cache.Cache, processor *validation.Processor, applier *validation.Applier, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(MetricsMiddleware())

	venues := NewVenueServer(repo, redisCache, logger)
	beers := NewBeerServer(repo, redisCache, logger)
	submissions := NewSubmissionServer(processor, logger)
	admin := NewAdminServer(repo, applier, conf.Integrations.Brewery, logger)
	authManager := auth.NewManager(conf, logger)

	router.GET("/health", func(c *gin.Context) {
		if err := repo.Ping(); err != nil {
			logger.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "disconnected"})

			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/search", venues.Search)
	router.GET("/autocomplete", venues.Autocomplete)
	router.GET("/nearby", venues.Nearby)

	api := router.Group("/api")
	{
		api.GET("/stats", venues.Stats)
		api.GET("/breweries", beers.Breweries)
		api.GET("/breweries/:brewery/beers", beers.BreweryBeers)
		api.POST("/submissions", submissions.Submit)
		api.POST("/venues/:id/status", venues.UpdateStatus)

		adminRoutes := api.Group("/admin", authManager.Middleware())
		{
			adminRoutes.GET("/queue", admin.Queue)
			adminRoutes.POST("/queue/:id/approve", admin.Approve)
			adminRoutes.POST("/queue/:id/reject", admin.Reject)
			adminRoutes.GET("/breweries/lookup", admin.BreweryLookup)
		}
	}

	return router
}
