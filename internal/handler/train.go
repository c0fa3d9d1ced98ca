package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Hemanth509h/RailServe-sub000/internal/inventory"
	"github.com/Hemanth509h/RailServe-sub000/internal/model"
	"github.com/Hemanth509h/RailServe-sub000/internal/routegraph"
)

// TrainHandler serves the read-only train endpoints.  These are the
// ones worth caching: the route never changes and availability
// tolerates a few seconds of staleness.
type TrainHandler struct {
	Routes *routegraph.Registry
	Inv    *inventory.Store
}

// NewTrainHandler constructs a TrainHandler.
func NewTrainHandler(routes *routegraph.Registry, inv *inventory.Store) *TrainHandler {
	if routes == nil || inv == nil {
		panic("nil dependency passed to NewTrainHandler")
	}
	return &TrainHandler{Routes: routes, Inv: inv}
}

// GetRoute handles GET /v1/trains/:id/route and returns the ordered
// stop list with cumulative distances and halt times.
func (h *TrainHandler) GetRoute(c echo.Context) error {
	trainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || trainID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	g, err := h.Routes.Graph(trainID)
	if err != nil {
		return bookingError(c, err)
	}
	stops := g.Stops()
	items := make([]echo.Map, 0, len(stops))
	for _, s := range stops {
		items = append(items, echo.Map{
			"station_id":    s.StationID,
			"code":          s.Code,
			"sequence":      s.Sequence,
			"cumulative_km": s.CumulativeKm,
			"arrive_min":    s.ArriveMin,
			"depart_min":    s.DepartMin,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"train_id": trainID,
		"stops":    items,
	})
}

// GetAvailability handles GET /v1/trains/:id/availability.  Query
// parameters date, class and quota select the bucket; the response is
// its live snapshot.  Counts may be a few seconds stale when served
// from the response cache.
func (h *TrainHandler) GetAvailability(c echo.Context) error {
	trainID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || trainID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	date := c.QueryParam("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	class := model.CoachClass(c.QueryParam("class"))
	if !class.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown coach class"})
	}
	quota := model.Quota(c.QueryParam("quota"))
	if quota == "" {
		quota = model.QuotaGeneral
	}
	if !quota.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown quota"})
	}

	key := model.InventoryKey{TrainID: trainID, JourneyDate: date, Class: class, Quota: quota}
	snap, err := h.Inv.Snapshot(key)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"train_id":      trainID,
		"journey_date":  date,
		"class":         class,
		"quota":         quota,
		"available":     snap.Available,
		"rac_available": snap.RACAvailable,
		"waitlisted":    snap.Waitlisted,
		"frozen":        snap.Frozen,
	})
}
