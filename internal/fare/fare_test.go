package fare

import (
	"errors"
	"testing"
	"time"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

func testCalculator() *Calculator {
	base := map[model.CoachClass]float64{
		model.ClassSleeper: 0.60,
		model.ClassAC3Tier: 1.70,
		model.ClassAC2Tier: 2.40,
	}
	tatkal := map[model.CoachClass]float64{
		model.ClassSleeper: 0.90,
		model.ClassAC3Tier: 2.20,
	}
	return New(base, tatkal, DefaultTatkalWindows())
}

func fixedClock(s string) Clock {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.UTC() }
}

func TestPriceBase(t *testing.T) {
	c := testCalculator()
	got, err := c.Price(12001, 600, model.ClassAC3Tier, model.QuotaGeneral, "2026-09-01")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if got != 1020.00 {
		t.Fatalf("Price = %v, want 1020.00", got)
	}
}

func TestPriceUnknownClass(t *testing.T) {
	c := testCalculator()
	if _, err := c.Price(12001, 600, model.ClassAC1st, model.QuotaGeneral, "2026-09-01"); !errors.Is(err, ErrNoRate) {
		t.Fatalf("err = %v, want ErrNoRate", err)
	}
}

// The tatkal per-km rate replaces the base rate; the fare must not be
// base + premium.
func TestTatkalRateReplacesBase(t *testing.T) {
	c := testCalculator()
	// Journey 2026-09-01, so the AC window opens 2026-08-31 10:00:00.
	c.SetClock(fixedClock("2026-08-31 12:00:00"))
	got, err := c.Price(12001, 100, model.ClassAC3Tier, model.QuotaTatkal, "2026-09-01")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if got != 220.00 { // 2.20 * 100, not (1.70+2.20)*100
		t.Fatalf("Price = %v, want 220.00", got)
	}
}

func TestTatkalWindowBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		class model.CoachClass
		at    string
		open  bool
	}{
		{"AC at open boundary", model.ClassAC3Tier, "2026-08-31 10:00:00", true},
		{"AC one second early", model.ClassAC3Tier, "2026-08-31 09:59:59", false},
		{"non-AC at open boundary", model.ClassSleeper, "2026-08-31 11:00:00", true},
		{"non-AC one second early", model.ClassSleeper, "2026-08-31 10:59:59", false},
		{"AC at close boundary", model.ClassAC3Tier, "2026-08-31 23:59:59", false},
		{"wrong day entirely", model.ClassAC3Tier, "2026-08-29 12:00:00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testCalculator()
			c.SetClock(fixedClock(tc.at))
			_, err := c.Price(12001, 100, tc.class, model.QuotaTatkal, "2026-09-01")
			if tc.open && err != nil {
				t.Fatalf("expected window open, got %v", err)
			}
			if !tc.open && !errors.Is(err, ErrTatkalClosed) {
				t.Fatalf("err = %v, want ErrTatkalClosed", err)
			}
		})
	}
}

func TestSurgeMultiplierAppliedLast(t *testing.T) {
	c := testCalculator()
	if err := c.AddSurgeRule(SurgeRule{
		TrainID: 12001, Class: model.ClassAC3Tier,
		FromDate: "2026-09-01", ToDate: "2026-09-10", Multiplier: 1.25,
	}); err != nil {
		t.Fatalf("AddSurgeRule: %v", err)
	}
	got, err := c.Price(12001, 333, model.ClassAC3Tier, model.QuotaGeneral, "2026-09-05")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	// 1.70*333 = 566.10; *1.25 = 707.625 -> 707.63 (half-up).
	if got != 707.63 {
		t.Fatalf("Price = %v, want 707.63", got)
	}

	// A rule for a different class or date range must not apply.
	got, err = c.Price(12001, 333, model.ClassAC3Tier, model.QuotaGeneral, "2026-09-11")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if got != 566.10 {
		t.Fatalf("Price = %v, want 566.10 (no surge)", got)
	}
}

func TestOverlappingSurgeRulesConflict(t *testing.T) {
	c := testCalculator()
	_ = c.AddSurgeRule(SurgeRule{TrainID: 12001, Class: model.ClassSleeper, FromDate: "2026-09-01", ToDate: "2026-09-10", Multiplier: 1.1})
	_ = c.AddSurgeRule(SurgeRule{TrainID: 12001, Class: model.ClassSleeper, FromDate: "2026-09-08", ToDate: "2026-09-20", Multiplier: 1.3})

	// Inside the overlap the conflict is surfaced, not resolved.
	if _, err := c.Price(12001, 100, model.ClassSleeper, model.QuotaGeneral, "2026-09-09"); !errors.Is(err, ErrPricingConflict) {
		t.Fatalf("err = %v, want ErrPricingConflict", err)
	}
	// Outside the overlap each rule applies cleanly.
	got, err := c.Price(12001, 100, model.ClassSleeper, model.QuotaGeneral, "2026-09-02")
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if got != 66.00 { // 0.60*100*1.1
		t.Fatalf("Price = %v, want 66.00", got)
	}
}

func TestAddSurgeRuleValidation(t *testing.T) {
	c := testCalculator()
	if err := c.AddSurgeRule(SurgeRule{TrainID: 1, Class: model.ClassSleeper, FromDate: "2026-09-01", ToDate: "2026-09-02", Multiplier: 0.9}); err == nil {
		t.Fatal("expected error for multiplier below 1.0")
	}
	if err := c.AddSurgeRule(SurgeRule{TrainID: 1, Class: model.ClassSleeper, FromDate: "2026-09-05", ToDate: "2026-09-02", Multiplier: 1.1}); err == nil {
		t.Fatal("expected error for inverted date range")
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{707.625, 707.63},
		{707.624, 707.62},
		{100.005, 100.01},
		{0, 0},
	}
	for _, tc := range cases {
		if got := roundHalfUp(tc.in); got != tc.want {
			t.Fatalf("roundHalfUp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
