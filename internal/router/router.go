// Package router registers the HTTP routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Hemanth509h/RailServe-sub000/internal/config"
	"github.com/Hemanth509h/RailServe-sub000/internal/handler"
	"github.com/Hemanth509h/RailServe-sub000/internal/middleware"
)

// Register wires every route onto the Echo instance.  The rate limiter
// guards the mutating booking endpoints; the response cache sits only
// on the read-only train endpoints, where short-TTL staleness is
// acceptable.
func Register(e *echo.Echo, b *handler.BookingHandler, p *handler.PaymentHandler, a *handler.AdminHandler, t *handler.TrainHandler, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limited := e.Group("/v1")
	limited.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	limited.POST("/bookings", b.CreateBooking)
	limited.GET("/bookings/:pnr", b.GetBooking)
	limited.DELETE("/bookings/:pnr", b.CancelBooking)
	limited.GET("/bookings/:pnr/waitlist", b.WaitlistStatus)

	limited.POST("/payments/outcome", p.Outcome)
	limited.POST("/admin/chart-prep", a.ChartPrep)

	cached := e.Group("/v1/trains")
	cached.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	cached.GET("/:id/route", t.GetRoute)
	cached.GET("/:id/availability", t.GetAvailability)
}
