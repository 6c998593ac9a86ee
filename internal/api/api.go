// internal/api/api.go
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jaysongor/ducklens-backend/internal/api/handlers"
	"github.com/jaysongor/ducklens-backend/internal/api/middleware"
	"github.com/jaysongor/ducklens-backend/internal/config"
	"github.com/jaysongor/ducklens-backend/internal/service"
)

// NewRouter wires the read API and the refresh trigger.
func NewRouter(cfg *config.Config, insights *service.InsightsService, refresh *service.RefreshService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := handlers.New(insights, refresh)

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/data_quality", h.DataQuality)
		v1.GET("/promo/summary", h.PromoSummary)
		v1.GET("/promo/kpis", h.PromoKPIs)
		v1.GET("/price_index/store_level", h.StorePriceIndex)
		v1.GET("/price_index/by_category", h.CategoryPriceIndex)
		v1.GET("/reliability/stores", h.StoreReliability)
		v1.GET("/reliability/suppliers", h.SupplierReliability)
		v1.GET("/reliability/overall", h.OverallReliability)
		v1.POST("/refresh", h.Refresh)
	}

	return router
}
