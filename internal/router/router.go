// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/moviehall/ticket-booking/internal/handler"
)

// RegisterRoutes registers routes that need no dependencies.  The
// health check is used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the public API under /api.  The show
// endpoints sit behind the response cache; the booking creation
// endpoint sits behind the rate limiter.  Either middleware may be
// nil when its backing store is not configured.
func RegisterAPI(e *echo.Echo, shows *handler.ShowHandler, bookings *handler.BookingHandler, cache, limiter echo.MiddlewareFunc) {
	g := e.Group("/api")

	browse := []echo.MiddlewareFunc{}
	if cache != nil {
		browse = append(browse, cache)
	}
	g.GET("/shows", shows.ListShows, browse...)
	g.GET("/shows/:id", shows.GetShow, browse...)

	book := []echo.MiddlewareFunc{}
	if limiter != nil {
		book = append(book, limiter)
	}
	g.POST("/bookings", bookings.CreateBooking, book...)
	g.GET("/bookings/user/:userId", bookings.ListUserBookings)
	g.GET("/bookings/:id/qr", bookings.BookingQR)
}
