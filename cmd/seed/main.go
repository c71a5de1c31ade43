// Command seed creates the initial admin account. Running it twice is
// harmless: an existing account with the same email is left untouched.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rasakita/recipe-share/internal/config"
	"github.com/rasakita/recipe-share/internal/database"
	"github.com/rasakita/recipe-share/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	nama := envOr("ADMIN_NAMA", "Super Admin")
	email := envOr("ADMIN_EMAIL", "admin@admin.com")
	password := envOr("ADMIN_PASSWORD", "password123")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	id, err := users.Create(ctx, nama, email, password, "admin", cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			log.Printf("admin %s already exists, nothing to do", email)
			return
		}
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin %s created (id %d)", email, id)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
