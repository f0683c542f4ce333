package api

import (
	"net/http"

	authDelivery "cleanagent-backend/internal/auth/delivery"
	authUsecase "cleanagent-backend/internal/auth/usecase"
	cleanDelivery "cleanagent-backend/internal/clean/delivery"
	cleanUsecase "cleanagent-backend/internal/clean/usecase"
	"cleanagent-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, cleanUc cleanUsecase.CleanUsecase, cfg *config.Config) {
	authHandler := authDelivery.NewAuthHandler(authUc, cfg.FrontendURL)
	cleanHandler := cleanDelivery.NewCleanHandler(cleanUc)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "cleanagent-backend",
			"status":  "running",
		})
	})

	// OAuth flow (browser redirects, no auth required)
	auth := r.Group("/auth")
	{
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.GET("/me", authDelivery.AuthMiddleware(authUc), authHandler.Me)
		auth.POST("/logout", authHandler.Logout)
	}

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/clean", cleanHandler.Clean)
	}
}
