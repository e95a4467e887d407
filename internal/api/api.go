package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/craftline/forecast-backend/internal/api/handlers"
	"github.com/craftline/forecast-backend/internal/api/middleware"
	"github.com/craftline/forecast-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ForecastService *service.ForecastService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), middleware.Recovery(), corsMiddleware(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	if services != nil && services.ForecastService != nil {
		h := handlers.NewForecastHandler(services.ForecastService)

		forecast := v1.Group("/forecast")
		{
			forecast.GET("/summary", h.GetSummaries)
			forecast.GET("/materials/:id", h.GetMaterialForecast)
			forecast.POST("/run", h.RunForecast)
			forecast.GET("/runs/latest", h.GetLatestRun)
		}

		replenishment := v1.Group("/replenishment")
		{
			replenishment.GET("/schedule", h.GetSchedule)
		}
	}

	return router
}

// corsMiddleware builds the CORS policy from the configured origin list.
// Entries may themselves be comma separated, and "*" opens the API up, which
// is the development default.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	var origins []string
	allowAll := false
	for _, entry := range allowedOrigins {
		for _, part := range strings.Split(entry, ",") {
			origin := strings.TrimSpace(part)
			switch origin {
			case "":
			case "*":
				allowAll = true
			default:
				origins = append(origins, origin)
			}
		}
	}

	switch {
	case allowAll:
		cfg.AllowOrigins = nil
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(origins) > 0:
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}
