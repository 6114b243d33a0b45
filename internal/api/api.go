// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hvaldivia/repuestos-analytics/internal/api/handlers"
	"github.com/hvaldivia/repuestos-analytics/internal/api/middleware"
	"github.com/hvaldivia/repuestos-analytics/internal/auth"
	"github.com/hvaldivia/repuestos-analytics/internal/service"
)

type Services struct {
	Analytics *service.AnalyticsService
	Auth      *auth.Service
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Auth != nil {
		authHandler := handlers.NewAuthHandler(services.Auth)
		router.POST("/auth/login", authHandler.Login)
	}

	if services.Analytics != nil {
		analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
		apiGroup := router.Group("/api/v1")
		if services.Auth != nil {
			apiGroup.Use(middleware.Authenticate(services.Auth))
		}

		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/stores", analyticsHandler.GetStores)
			analyticsGroup.GET("/sales", analyticsHandler.GetSales)
			analyticsGroup.GET("/top_products", analyticsHandler.GetTopProducts)
			analyticsGroup.GET("/brand_sales", analyticsHandler.GetBrandSales)
			analyticsGroup.GET("/recommendations", analyticsHandler.GetRecommendations)
			analyticsGroup.GET("/forecast", analyticsHandler.GetForecast)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
