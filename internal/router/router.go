// internal/router/router.go
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/casaprime/realty-backend/internal/config"
	"github.com/casaprime/realty-backend/internal/handlers"
	"github.com/casaprime/realty-backend/internal/metrics"
	"github.com/casaprime/realty-backend/internal/middleware"
	"github.com/casaprime/realty-backend/internal/services"
	"github.com/casaprime/realty-backend/internal/store"
	"github.com/casaprime/realty-backend/internal/utils"
)

const Version = "1.0.0"

// Router is the HTTP surface plus the background resources it owns.
type Router struct {
	Engine   *gin.Engine
	limiters []*middleware.RateLimiter
}

// Close stops the rate limiter cleanup goroutines.
func (r *Router) Close() {
	for _, limiter := range r.limiters {
		limiter.Stop()
	}
}

func Initialize(db *gorm.DB, cfg *config.Config) (*Router, error) {
	// Initialize services
	st := store.NewGormStore(db)

	workflow, err := services.NewWorkflow(cfg.Workflow.StatusWorkflow)
	if err != nil {
		return nil, err
	}
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	authorizationService := services.NewAuthorizationService(st)
	propertyService := services.NewPropertyService(st)
	statusService := services.NewStatusService(st, workflow)
	realtorService := services.NewRealtorService(st)
	statsService := services.NewStatsService(st, cfg.StatsLocation())
	rankingService := services.NewRankingService(st)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, workflow, Version)
	listingHandler := handlers.NewListingHandler(propertyService)
	propertyHandler := handlers.NewPropertyHandler(propertyService, statusService, authorizationService, storageService)
	realtorHandler := handlers.NewRealtorHandler(realtorService)
	statsHandler := handlers.NewStatsHandler(statsService, rankingService, authorizationService)
	adminHandler := handlers.NewAdminHandler(statsService, rankingService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	generalLimiter := middleware.GeneralLimiter(cfg.RateLimit)
	uploadLimiter := middleware.UploadLimiter(cfg.RateLimit)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", metrics.Handler())

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(generalLimiter.Middleware())
	{
		// Public site
		listings := v1.Group("/listings")
		{
			listings.GET("/home", listingHandler.Home)
			listings.GET("/properties", listingHandler.Properties)
			listings.GET("/search", listingHandler.Search)
		}

		// Property routes
		properties := v1.Group("/properties")
		{
			properties.GET("/:id", middleware.OptionalAuth(), propertyHandler.GetProperty)

			protected := properties.Group("")
			protected.Use(middleware.AuthRequired(), middleware.StaffRequired())
			{
				protected.POST("", propertyHandler.CreateProperty)
				protected.PUT("/:id", propertyHandler.UpdateProperty)
				protected.DELETE("/:id", propertyHandler.DeleteProperty)
				protected.PUT("/:id/status", propertyHandler.ChangeStatus)
				protected.GET("/:id/history", propertyHandler.GetStatusHistory)
				protected.POST("/:id/images", uploadLimiter.Middleware(), propertyHandler.UploadImages)
			}
		}

		// Realtor routes
		realtors := v1.Group("/realtors")
		{
			realtors.GET("/ranking", statsHandler.GetRanking)
			realtors.GET("/:id/stats", middleware.AuthRequired(), middleware.StaffRequired(), statsHandler.GetRealtorStats)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/rankings", adminHandler.GetRankings)
			admin.POST("/stats/rebuild", adminHandler.RebuildStats)

			adminRealtors := admin.Group("/realtors")
			{
				adminRealtors.GET("", realtorHandler.ListRealtors)
				adminRealtors.POST("", realtorHandler.CreateRealtor)
				adminRealtors.GET("/:id", realtorHandler.GetRealtor)
				adminRealtors.PUT("/:id", realtorHandler.UpdateRealtor)
				adminRealtors.DELETE("/:id", realtorHandler.DeleteRealtor)
				adminRealtors.PUT("/:id/block", realtorHandler.BlockRealtor)
				adminRealtors.PUT("/:id/unblock", realtorHandler.UnblockRealtor)
				adminRealtors.PUT("/:id/deactivate", realtorHandler.DeactivateRealtor)
				adminRealtors.PUT("/:id/reactivate", realtorHandler.ReactivateRealtor)
				adminRealtors.PUT("/:id/password", realtorHandler.ResetPassword)
			}
		}
	}

	return &Router{
		Engine:   r,
		limiters: []*middleware.RateLimiter{generalLimiter, uploadLimiter},
	}, nil
}
