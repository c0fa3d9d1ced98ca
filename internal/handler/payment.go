package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Hemanth509h/RailServe-sub000/internal/engine"
)

// PaymentHandler receives outcomes from the external payment layer.
type PaymentHandler struct {
	Engine *engine.Engine
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(eng *engine.Engine) *PaymentHandler {
	if eng == nil {
		panic("nil engine passed to NewPaymentHandler")
	}
	return &PaymentHandler{Engine: eng}
}

// Outcome handles POST /v1/payments/outcome, the webhook delivering a
// payment result for a PNR.  Success finalises the booking; failure
// releases its seats and drains the waitlist.  A booking with no
// pending payment gets a 409 so the payment provider stops retrying.
func (h *PaymentHandler) Outcome(c echo.Context) error {
	var out engine.PaymentOutcome
	if err := c.Bind(&out); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if out.PNR == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pnr is required"})
	}
	if err := h.Engine.HandlePayment(c.Request().Context(), out); err != nil {
		return bookingError(c, err)
	}
	b, err := h.Engine.GetBooking(out.PNR)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pnr":            b.PNR,
		"status":         b.Status,
		"payment_status": b.Payment,
	})
}
