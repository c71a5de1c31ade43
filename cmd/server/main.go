package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/rasakita/recipe-share/internal/config"
	"github.com/rasakita/recipe-share/internal/database"
	"github.com/rasakita/recipe-share/internal/handler"
	"github.com/rasakita/recipe-share/internal/imagehost"
	"github.com/rasakita/recipe-share/internal/middleware"
	"github.com/rasakita/recipe-share/internal/queue"
	"github.com/rasakita/recipe-share/internal/repository"
	"github.com/rasakita/recipe-share/internal/router"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unavailable
	cacheCfg := config.LoadCacheConfig()
	invalidator := middleware.NewCacheInvalidator(cacheCfg, rdb)

	host := imagehost.NewClient(cfg.ImgurClientID)

	// Background consumer that deletes superseded photos from the image
	// host. It reconnects on its own; a missing broker only disables
	// cleanup, never the API.
	go func() {
		if err := queue.StartImageCleanupConsumer(host); err != nil {
			log.Printf("image cleanup consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	recipes := repository.NewRecipeRepo(db)
	reviews := repository.NewReviewRepo(db)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Cfg:      cfg,
		CacheCfg: cacheCfg,
		Users:    users,
		Auth:     handler.NewAuthHandler(cfg, users),
		Recipes:  handler.NewRecipeHandler(recipes, host, invalidator),
		Reviews:  handler.NewReviewHandler(reviews, invalidator),
		Redis:    rdb,
	})

	log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
