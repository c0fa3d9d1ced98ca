// Package handler contains the HTTP handlers.  Handlers translate
// between the JSON surface and the engine; every admission decision is
// the engine's.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Hemanth509h/RailServe-sub000/internal/engine"
	"github.com/Hemanth509h/RailServe-sub000/internal/fare"
	"github.com/Hemanth509h/RailServe-sub000/internal/inventory"
	"github.com/Hemanth509h/RailServe-sub000/internal/model"
	"github.com/Hemanth509h/RailServe-sub000/internal/routegraph"
	"github.com/Hemanth509h/RailServe-sub000/internal/waitlist"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Engine *engine.Engine
}

// NewBookingHandler constructs a BookingHandler.  The engine must be
// non-nil.
func NewBookingHandler(eng *engine.Engine) *BookingHandler {
	if eng == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: eng}
}

// CreateBooking handles POST /v1/bookings.  The body is a
// BookingRequest; a successful admission returns 201 with the PNR,
// status, seats (when allocated) and fare.  Losing the race for the
// last seat is not a failure: the booking comes back WAITLISTED with
// its queue position.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req engine.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Engine.CreateBooking(c.Request().Context(), req)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// GetBooking handles GET /v1/bookings/:pnr and returns the live
// booking snapshot.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	b, err := h.Engine.GetBooking(c.Param("pnr"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, bookingView(b))
}

// CancelBooking handles DELETE /v1/bookings/:pnr.  Cancelling a
// confirmed or RAC booking releases its seats and promotes the
// waitlist; a paid booking moves to REFUND_PENDING.  Returns the
// booking in its post-cancellation state.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	pnr := c.Param("pnr")
	if err := h.Engine.Cancel(c.Request().Context(), pnr); err != nil {
		return bookingError(c, err)
	}
	b, err := h.Engine.GetBooking(pnr)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, bookingView(b))
}

// WaitlistStatus handles GET /v1/bookings/:pnr/waitlist and returns
// the live queue position of a waitlisted booking.  The position is
// recomputed per request, so it shrinks as earlier entries cancel or
// promote.
func (h *BookingHandler) WaitlistStatus(c echo.Context) error {
	st, err := h.Engine.WaitlistStatus(c.Param("pnr"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// bookingView shapes a booking for JSON responses.
func bookingView(b *model.Booking) echo.Map {
	m := echo.Map{
		"pnr":            b.PNR,
		"train_id":       b.Key.TrainID,
		"journey_date":   b.Key.JourneyDate,
		"class":          b.Key.Class,
		"quota":          b.Key.Quota,
		"from_station":   b.FromStationID,
		"to_station":     b.ToStationID,
		"status":         b.Status,
		"payment_status": b.Payment,
		"distance_km":    b.DistanceKm,
		"fare_amount":    b.FareAmount,
		"passengers":     len(b.Passengers),
		"created_at":     b.CreatedAt.Format(time.RFC3339),
		"updated_at":     b.UpdatedAt.Format(time.RFC3339),
	}
	if len(b.Seats) > 0 {
		m["seats"] = b.Seats
	}
	if b.WaitlistType != "" {
		m["waitlist_type"] = b.WaitlistType
	}
	if b.CancelReason != "" {
		m["cancel_reason"] = b.CancelReason
	}
	return m
}

// bookingError maps engine and domain errors onto HTTP statuses.  The
// error text is passed through: the sentinels carry enough context and
// none of them leak internals.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrBadRequest),
		errors.Is(err, routegraph.ErrInvalidRoute):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrNotFound),
		errors.Is(err, routegraph.ErrUnknownTrain),
		errors.Is(err, inventory.ErrUnknownKey):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrAlreadyFinal),
		errors.Is(err, engine.ErrNoPaymentDue),
		errors.Is(err, engine.ErrNotWaitlisted),
		errors.Is(err, inventory.ErrFrozen),
		errors.Is(err, waitlist.ErrFull),
		errors.Is(err, fare.ErrTatkalClosed),
		errors.Is(err, fare.ErrPricingConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	c.Logger().Errorf("booking: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
