package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Hemanth509h/RailServe-sub000/internal/bootstrap"
	"github.com/Hemanth509h/RailServe-sub000/internal/config"
	"github.com/Hemanth509h/RailServe-sub000/internal/database"
	"github.com/Hemanth509h/RailServe-sub000/internal/engine"
	"github.com/Hemanth509h/RailServe-sub000/internal/handler"
	"github.com/Hemanth509h/RailServe-sub000/internal/queue"
	"github.com/Hemanth509h/RailServe-sub000/internal/repository"
	"github.com/Hemanth509h/RailServe-sub000/internal/router"
	event_publisher "github.com/Hemanth509h/RailServe-sub000/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var world *bootstrap.World
	var persist engine.Persistence
	if cfg.UseFixtures {
		// Fixture runs have no database: the engine's in-memory state
		// is the only state.
		log.Printf("bootstrap: using bundled fixtures")
		w, err := bootstrap.Fixtures()
		if err != nil {
			log.Fatalf("bootstrap fixtures: %v", err)
		}
		world = w
	} else {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		w, err := bootstrap.FromDB(ctx, db)
		if err != nil {
			log.Fatalf("bootstrap: %v", err)
		}
		world = w
		persist = repository.NewPersister(db)
	}

	eng := engine.New(world.Routes, world.Fares, world.Inv, engine.Config{
		MaxWaitlist:   cfg.MaxWaitlist,
		PaymentWindow: cfg.PaymentWindow,
		SweepInterval: cfg.SweepInterval,
	})
	if persist != nil {
		eng.SetPersistence(persist)
	}
	eng.SetEvents(event_publisher.New())

	go eng.Run(ctx)
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}
	router.Register(e,
		handler.NewBookingHandler(eng),
		handler.NewPaymentHandler(eng),
		handler.NewAdminHandler(eng),
		handler.NewTrainHandler(world.Routes, world.Inv),
		rdb,
	)

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s, trains=%d)", addr, cfg.Env, len(world.Trains))
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
