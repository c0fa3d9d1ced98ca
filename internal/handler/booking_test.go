package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Hemanth509h/RailServe-sub000/internal/engine"
	"github.com/Hemanth509h/RailServe-sub000/internal/fare"
	"github.com/Hemanth509h/RailServe-sub000/internal/inventory"
	"github.com/Hemanth509h/RailServe-sub000/internal/model"
	"github.com/Hemanth509h/RailServe-sub000/internal/routegraph"
)

const journeyDate = "2026-09-01"

// newTestServer builds an engine over a two-seat sleeper bucket and
// returns an Echo instance with every booking route registered.
func newTestServer(t *testing.T, capacity int) (*echo.Echo, *engine.Engine) {
	t.Helper()

	g, err := routegraph.New(12951, []model.RouteStop{
		{StationID: 1, Code: "BCT", Sequence: 1, CumulativeKm: 0},
		{StationID: 2, Code: "ST", Sequence: 2, CumulativeKm: 263, ArriveMin: 195, DepartMin: 200},
		{StationID: 3, Code: "NDLS", Sequence: 3, CumulativeKm: 1384, ArriveMin: 1120},
	})
	if err != nil {
		t.Fatalf("route graph: %v", err)
	}
	registry := routegraph.NewRegistry()
	registry.Add(g)

	calc := fare.New(
		map[model.CoachClass]float64{model.ClassSleeper: 0.60},
		map[model.CoachClass]float64{model.ClassSleeper: 0.80},
		fare.DefaultTatkalWindows(),
	)

	inv := inventory.NewStore()
	key := model.InventoryKey{TrainID: 12951, JourneyDate: journeyDate, Class: model.ClassSleeper, Quota: model.QuotaGeneral}
	if err := inv.Configure(key, capacity, 0); err != nil {
		t.Fatalf("configure: %v", err)
	}

	eng := engine.New(registry, calc, inv, engine.Config{MaxWaitlist: 10})
	eng.SetClock(func() time.Time {
		return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	})

	e := echo.New()
	b := NewBookingHandler(eng)
	p := NewPaymentHandler(eng)
	a := NewAdminHandler(eng)
	tr := NewTrainHandler(registry, inv)
	e.GET("/healthz", Health)
	e.POST("/v1/bookings", b.CreateBooking)
	e.GET("/v1/bookings/:pnr", b.GetBooking)
	e.DELETE("/v1/bookings/:pnr", b.CancelBooking)
	e.GET("/v1/bookings/:pnr/waitlist", b.WaitlistStatus)
	e.POST("/v1/payments/outcome", p.Outcome)
	e.POST("/v1/admin/chart-prep", a.ChartPrep)
	e.GET("/v1/trains/:id/route", tr.GetRoute)
	e.GET("/v1/trains/:id/availability", tr.GetAvailability)
	return e, eng
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createBooking(t *testing.T, e *echo.Echo) map[string]any {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/v1/bookings", `{
        "train_id": 12951,
        "journey_date": "`+journeyDate+`",
        "from_station_id": 1,
        "to_station_id": 3,
        "class": "SL",
        "quota": "GN",
        "passengers": [{"name": "Asha Verma", "age": 34}]
    }`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestCreateAndGetBooking(t *testing.T) {
	e, _ := newTestServer(t, 2)
	out := createBooking(t, e)
	if out["status"] != "CONFIRMED" {
		t.Fatalf("status = %v", out["status"])
	}
	pnr, _ := out["pnr"].(string)
	if len(pnr) != 10 {
		t.Fatalf("pnr = %q", pnr)
	}
	// 1384 km * 0.60/km = 830.40
	if out["fare_amount"] != 830.40 {
		t.Fatalf("fare = %v", out["fare_amount"])
	}

	rec := doJSON(e, http.MethodGet, "/v1/bookings/"+pnr, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got["payment_status"] != "PENDING" {
		t.Fatalf("payment_status = %v", got["payment_status"])
	}
}

func TestCreateBookingInvalidRoute(t *testing.T) {
	e, _ := newTestServer(t, 2)
	rec := doJSON(e, http.MethodPost, "/v1/bookings", `{
        "train_id": 12951,
        "journey_date": "`+journeyDate+`",
        "from_station_id": 3,
        "to_station_id": 1,
        "class": "SL",
        "quota": "GN",
        "passengers": [{"name": "Asha Verma", "age": 34}]
    }`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateBookingUnknownTrain(t *testing.T) {
	e, _ := newTestServer(t, 2)
	rec := doJSON(e, http.MethodPost, "/v1/bookings", `{
        "train_id": 99999,
        "journey_date": "`+journeyDate+`",
        "from_station_id": 1,
        "to_station_id": 3,
        "class": "SL",
        "quota": "GN",
        "passengers": [{"name": "Asha Verma", "age": 34}]
    }`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestWaitlistPositionEndpoint(t *testing.T) {
	e, _ := newTestServer(t, 1)
	createBooking(t, e) // takes the only seat
	out := createBooking(t, e)
	if out["status"] != "WAITLISTED" {
		t.Fatalf("status = %v", out["status"])
	}
	pnr := out["pnr"].(string)

	rec := doJSON(e, http.MethodGet, "/v1/bookings/"+pnr+"/waitlist", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var st map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &st)
	if st["position"] != float64(1) || st["waitlist_type"] != "GNWL" {
		t.Fatalf("waitlist = %v", st)
	}
}

func TestWaitlistEndpointRejectsConfirmed(t *testing.T) {
	e, _ := newTestServer(t, 2)
	out := createBooking(t, e)
	pnr := out["pnr"].(string)
	rec := doJSON(e, http.MethodGet, "/v1/bookings/"+pnr+"/waitlist", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCancelPromotesWaitlist(t *testing.T) {
	e, _ := newTestServer(t, 1)
	first := createBooking(t, e)
	second := createBooking(t, e)
	firstPNR := first["pnr"].(string)
	secondPNR := second["pnr"].(string)

	rec := doJSON(e, http.MethodDelete, "/v1/bookings/"+firstPNR, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var cancelled map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &cancelled)
	if cancelled["status"] != "CANCELLED" {
		t.Fatalf("status = %v", cancelled["status"])
	}

	rec = doJSON(e, http.MethodGet, "/v1/bookings/"+secondPNR, "")
	var promoted map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &promoted)
	if promoted["status"] != "CONFIRMED" {
		t.Fatalf("promoted status = %v", promoted["status"])
	}

	// Second cancel of the same booking is a conflict.
	rec = doJSON(e, http.MethodDelete, "/v1/bookings/"+firstPNR, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("double cancel status = %d", rec.Code)
	}
}

func TestPaymentOutcomeEndpoint(t *testing.T) {
	e, _ := newTestServer(t, 2)
	out := createBooking(t, e)
	pnr := out["pnr"].(string)

	rec := doJSON(e, http.MethodPost, "/v1/payments/outcome", `{"pnr": "`+pnr+`", "success": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["payment_status"] != "PAID" {
		t.Fatalf("payment_status = %v", resp["payment_status"])
	}

	// Replay from the provider is rejected.
	rec = doJSON(e, http.MethodPost, "/v1/payments/outcome", `{"pnr": "`+pnr+`", "success": true}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("replay status = %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/v1/payments/outcome", `{"success": true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing pnr status = %d", rec.Code)
	}
}

func TestChartPrepEndpoint(t *testing.T) {
	e, _ := newTestServer(t, 2)
	rec := doJSON(e, http.MethodPost, "/v1/admin/chart-prep", `{"train_id": 12951, "journey_date": "`+journeyDate+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["keys_swept"] != float64(1) {
		t.Fatalf("keys_swept = %v", resp["keys_swept"])
	}

	// The frozen bucket rejects new bookings.
	rec = doJSON(e, http.MethodPost, "/v1/bookings", `{
        "train_id": 12951,
        "journey_date": "`+journeyDate+`",
        "from_station_id": 1,
        "to_station_id": 3,
        "class": "SL",
        "quota": "GN",
        "passengers": [{"name": "Asha Verma", "age": 34}]
    }`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("post-freeze booking status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestTrainRouteEndpoint(t *testing.T) {
	e, _ := newTestServer(t, 2)
	rec := doJSON(e, http.MethodGet, "/v1/trains/12951/route", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		TrainID uint64 `json:"train_id"`
		Stops   []struct {
			Code         string  `json:"code"`
			CumulativeKm float64 `json:"cumulative_km"`
		} `json:"stops"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Stops) != 3 || resp.Stops[2].Code != "NDLS" || resp.Stops[2].CumulativeKm != 1384 {
		t.Fatalf("stops = %+v", resp.Stops)
	}

	rec = doJSON(e, http.MethodGet, "/v1/trains/404/route", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown train status = %d", rec.Code)
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	e, _ := newTestServer(t, 2)
	createBooking(t, e)

	rec := doJSON(e, http.MethodGet, "/v1/trains/12951/availability?date="+journeyDate+"&class=SL&quota=GN", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["available"] != float64(1) {
		t.Fatalf("available = %v", resp["available"])
	}

	rec = doJSON(e, http.MethodGet, "/v1/trains/12951/availability?date="+journeyDate+"&class=1A&quota=GN", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unconfigured bucket status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/v1/trains/12951/availability?date=tomorrow&class=SL", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer(t, 1)
	rec := doJSON(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}
