// Package router wires HTTP routes to handlers and middleware. Public
// catalog reads stay open and cacheable; everything that writes or is
// user-scoped sits behind the JWT middleware.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/rasakita/recipe-share/internal/config"
	"github.com/rasakita/recipe-share/internal/handler"
	"github.com/rasakita/recipe-share/internal/middleware"
	"github.com/rasakita/recipe-share/internal/model"
	"github.com/rasakita/recipe-share/internal/repository"
)

// Deps carries everything the route table needs.
type Deps struct {
	Cfg      config.Config
	CacheCfg config.CacheConfig
	Users    *repository.UserRepo
	Auth     *handler.AuthHandler
	Recipes  *handler.RecipeHandler
	Reviews  *handler.ReviewHandler
	Redis    *redis.Client
}

// Register mounts all routes on e.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Redis-backed token bucket; disabled automatically when Redis is absent.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))

	cache := middleware.NewRedisCache(d.CacheCfg, d.Redis)

	auth := middleware.JWTAuth(d.Cfg.JWTSecret, d.Users)
	anyRole := middleware.RequireRole(model.RoleUser, model.RoleAdmin)

	e.GET("/healthz", handler.Health)

	// Auth
	a := e.Group("/auth")
	a.POST("/register", d.Auth.Register)
	a.POST("/login", d.Auth.Login)
	a.GET("/me", d.Auth.Me, auth)

	// Recipes. /my-recipes is registered before /:id so the literal path
	// does not get swallowed by the parameter route.
	r := e.Group("/recipes")
	r.GET("", d.Recipes.List, cache)
	r.GET("/my-recipes", d.Recipes.ListMine, auth, anyRole)
	r.GET("/:id", d.Recipes.GetByID, cache)
	r.POST("", d.Recipes.Create, auth, anyRole)
	r.PUT("/:id", d.Recipes.Update, auth, anyRole)
	r.DELETE("/:id", d.Recipes.Delete, auth, anyRole)

	// Reviews
	r.GET("/:id/reviews", d.Reviews.ListForRecipe, cache)
	r.POST("/:id/reviews", d.Reviews.Add, auth, anyRole)
	e.GET("/reviews", d.Reviews.ListAll, cache)
	e.DELETE("/reviews/:id", d.Reviews.Delete, auth, anyRole)
}
