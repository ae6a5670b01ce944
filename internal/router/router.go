// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-directory/internal/config"
	"github.com/iliyamo/user-directory/internal/handler"
	"github.com/iliyamo/user-directory/internal/middleware"
	"github.com/iliyamo/user-directory/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the /users API. The bootstrap and login
// endpoints are open; /me requires an active caller; everything else
// requires an active superuser. The guard stages are chained explicitly
// so each group states exactly how much privilege it demands.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, cfg config.Config, store repository.UserStore, rdb *redis.Client) {
	g := e.Group("/users")
	g.POST("/init", h.Init)
	g.POST("/token", h.Token)

	identified := middleware.CurrentUser(cfg.JWTSecret, store)

	// Self-service: any active caller.
	g.GET("/me", h.Me, identified, middleware.RequireActiveUser)

	// Directory management: active superusers only.
	admin := g.Group("", identified, middleware.RequireActiveUser, middleware.RequireSuperuser)
	cache := middleware.ResponseCache(cfg.Cache, rdb)
	admin.GET("", h.GetUser, cache)
	admin.GET("/all", h.GetAllUsers, cache)
	admin.POST("", h.CreateUser)
	admin.PUT("/:id", h.UpdateUser)
	admin.DELETE("/:id", h.DeleteUser)
}
