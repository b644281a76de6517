package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha/internal/core/services"
	"github.com/hucha-app/hucha/internal/middleware"
	"github.com/hucha-app/hucha/internal/platform/config"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRoutes sets up all application routes, injecting dependencies.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	authService *services.AuthService,
	snapshotService *services.SnapshotService,
) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public authentication routes (rate limited)
	registerAuthRoutes(r, cfg, authService)

	// Snapshot API behind auth
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	registerSnapshotRoutes(v1, snapshotService)
}
