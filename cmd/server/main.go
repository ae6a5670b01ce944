package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-directory/internal/auth"
	"github.com/iliyamo/user-directory/internal/config"
	"github.com/iliyamo/user-directory/internal/database"
	"github.com/iliyamo/user-directory/internal/directory"
	"github.com/iliyamo/user-directory/internal/handler"
	"github.com/iliyamo/user-directory/internal/queue"
	"github.com/iliyamo/user-directory/internal/repository"
	"github.com/iliyamo/user-directory/internal/router"
)

func main() {
	cfg := config.Load()

	var store repository.UserStore
	if cfg.UseMemoryStore() {
		store = repository.NewMemStore()
	} else {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Fatalf("ensure schema: %v", err)
		}
		cancel()
		store = repository.NewUserRepo(db)
	}

	var events *queue.Publisher
	if cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL)
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
	}

	dir := directory.New(store, cfg.BcryptCost, cfg.Superuser, events)
	authn := auth.NewAuthenticator(store, cfg.JWTSecret, cfg.AccessTTL())
	users := handler.NewUserHandler(dir, authn)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterUsers(e, users, cfg, store, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
