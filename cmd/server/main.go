package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/coffee-store-api/internal/config"
	"github.com/iliyamo/coffee-store-api/internal/database"
	"github.com/iliyamo/coffee-store-api/internal/handler"
	"github.com/iliyamo/coffee-store-api/internal/queue"
	"github.com/iliyamo/coffee-store-api/internal/router"
	"github.com/iliyamo/coffee-store-api/internal/service"
)

func main() {
	// .env is a convenience for local runs; in deployed environments
	// the variables come from the process environment.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBAdapter, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The sqlite adapter is self-contained, so it bootstraps its own
	// schema. MySQL deployments apply migrations/schema.sql instead.
	if cfg.DBAdapter == "sqlite" {
		if err := database.CreateSchema(context.Background(), db, cfg.DBAdapter); err != nil {
			log.Fatalf("schema: %v", err)
		}
	}

	// Optional Redis; nil disables response caching and rate limiting.
	rdb := config.NewRedisClient()

	// Background consumer that records order.placed events. It keeps
	// reconnecting on its own, so a broker outage never blocks startup.
	go queue.StartOrderConsumer()

	auth := service.NewAuthService(db, cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:       handler.NewAuthHandler(auth),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(db)),
		Products:   handler.NewProductHandler(service.NewProductService(db)),
		Orders:     handler.NewOrderHandler(service.NewOrderService(db)),
		Payments:   handler.NewPaymentHandler(service.NewPaymentService(db)),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBAdapter)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
