package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Hemanth509h/RailServe-sub000/internal/engine"
)

// AdminHandler serves the operational endpoints.
type AdminHandler struct {
	Engine *engine.Engine
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(eng *engine.Engine) *AdminHandler {
	if eng == nil {
		panic("nil engine passed to NewAdminHandler")
	}
	return &AdminHandler{Engine: eng}
}

// ChartPrep handles POST /v1/admin/chart-prep.  It runs the final
// waitlist sweep for every class and quota of the given train and
// journey date, then freezes those inventories.  Idempotent: repeating
// the call sweeps already-frozen keys again without effect.
func (h *AdminHandler) ChartPrep(c echo.Context) error {
	var body struct {
		TrainID     uint64 `json:"train_id"`
		JourneyDate string `json:"journey_date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TrainID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "train_id is required"})
	}
	if _, err := time.Parse("2006-01-02", body.JourneyDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "journey_date must be YYYY-MM-DD"})
	}
	swept, err := h.Engine.ChartPrep(c.Request().Context(), body.TrainID, body.JourneyDate)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"train_id":     body.TrainID,
		"journey_date": body.JourneyDate,
		"keys_swept":   swept,
	})
}
