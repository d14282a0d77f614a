package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/enumm/identity/internal/handlers"
	"github.com/enumm/identity/internal/middleware"
	"github.com/enumm/identity/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, auth *services.AuthService, profiles *services.ProfileService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if auth == nil {
		return nil, fmt.Errorf("auth service must be provided")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile service must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(auth)
	profileHandler := handlers.NewProfileHandler(profiles)

	v1 := r.Group("/v1")

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/verify-email", authHandler.VerifyEmail)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	requireAuth := middleware.Auth(auth)

	profile := v1.Group("/profile")
	profile.Use(requireAuth)
	{
		profile.GET("", profileHandler.Get)
		profile.PUT("", profileHandler.Update)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
