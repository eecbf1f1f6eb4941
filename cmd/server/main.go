package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/moviehall/ticket-booking/internal/booking"
	"github.com/moviehall/ticket-booking/internal/config"
	"github.com/moviehall/ticket-booking/internal/database"
	"github.com/moviehall/ticket-booking/internal/handler"
	"github.com/moviehall/ticket-booking/internal/middleware"
	"github.com/moviehall/ticket-booking/internal/queue"
	"github.com/moviehall/ticket-booking/internal/repository"
	"github.com/moviehall/ticket-booking/internal/router"
	queue_publisher "github.com/moviehall/ticket-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis may be absent; cache and rate limiting then disable themselves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: response cache and rate limiting disabled")
	}

	reservations := booking.NewService(repository.NewSQLStore(db))
	showHandler := handler.NewShowHandler(repository.NewShowRepo(db))
	bookingHandler := handler.NewBookingHandler(
		reservations,
		repository.NewBookingRepo(db),
		queue_publisher.PublishBookingConfirmed,
	)

	cache := middleware.NewShowCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAPI(e, showHandler, bookingHandler, cache, limiter)

	// Background consumer mirrors confirmations into logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
