// Package fare prices a journey segment from its distance, coach class,
// quota and the active pricing rules.
package fare

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// ErrTatkalClosed is returned when a Tatkal-quota request is made
// outside the configured opening window for the coach-class group.
var ErrTatkalClosed = errors.New("tatkal window closed")

// ErrPricingConflict is returned when two active surge rules overlap
// for the same (train, date, class).  The conflict is surfaced to the
// caller rather than silently resolved by picking one rule.
var ErrPricingConflict = errors.New("conflicting surge rules")

// ErrNoRate is returned when no per-km rate is configured for the
// requested coach class.
var ErrNoRate = errors.New("no fare rate for class")

// Clock is the time view used for Tatkal window checks.  Defaults to
// time.Now in UTC; tests substitute a fixed clock.
type Clock func() time.Time

// TatkalWindows configures the daily Tatkal opening windows.  Both
// windows are [open, close) clock intervals on the day before the
// journey.  AC classes open earlier than non-AC classes.
type TatkalWindows struct {
	ACOpen     string // "15:04:05" clock time, e.g. "10:00:00"
	ACClose    string
	NonACOpen  string // e.g. "11:00:00"
	NonACClose string
}

// DefaultTatkalWindows mirrors the railway's published opening times:
// AC classes at 10:00, non-AC at 11:00, both closing at end of day.
func DefaultTatkalWindows() TatkalWindows {
	return TatkalWindows{
		ACOpen:     "10:00:00",
		ACClose:    "23:59:59",
		NonACOpen:  "11:00:00",
		NonACClose: "23:59:59",
	}
}

// SurgeRule applies a dynamic-pricing multiplier to bookings for one
// train and coach class inside a journey-date range (inclusive on both
// ends, dates formatted 2006-01-02).  Multiplier must be >= 1.0.
type SurgeRule struct {
	TrainID    uint64
	Class      model.CoachClass
	FromDate   string
	ToDate     string
	Multiplier float64
}

func (r SurgeRule) covers(trainID uint64, class model.CoachClass, date string) bool {
	return r.TrainID == trainID && r.Class == class && r.FromDate <= date && date <= r.ToDate
}

// Calculator converts a segment distance into a final amount.  Rates
// and rules are set at construction / bootstrap time; Price itself is
// read-only and safe for concurrent use once the calculator is built.
type Calculator struct {
	mu         sync.RWMutex
	baseRate   map[model.CoachClass]float64 // rupees per km
	tatkalRate map[model.CoachClass]float64 // rupees per km, replaces baseRate for Tatkal
	windows    TatkalWindows
	surge      []SurgeRule
	clock      Clock
}

// New returns a calculator with the given per-km rates and Tatkal
// windows.  The tatkal rate for a class fully replaces the base rate;
// it is not stacked on top of it.
func New(baseRate, tatkalRate map[model.CoachClass]float64, windows TatkalWindows) *Calculator {
	return &Calculator{
		baseRate:   baseRate,
		tatkalRate: tatkalRate,
		windows:    windows,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the time source used for Tatkal window checks.
func (c *Calculator) SetClock(clock Clock) { c.clock = clock }

// AddSurgeRule registers a dynamic-pricing rule.  Rules with a
// multiplier below 1.0 are rejected; overlap between rules is detected
// lazily at pricing time so that conflicting configuration surfaces on
// the requests it affects.
func (c *Calculator) AddSurgeRule(r SurgeRule) error {
	if r.Multiplier < 1.0 {
		return fmt.Errorf("surge multiplier %.2f below 1.0 for train %d class %s", r.Multiplier, r.TrainID, r.Class)
	}
	if r.FromDate > r.ToDate {
		return fmt.Errorf("surge rule date range inverted: %s > %s", r.FromDate, r.ToDate)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surge = append(c.surge, r)
	return nil
}

// Price computes the final amount for a journey segment.
//
// Base fare = per-km rate for the class times distance.  For the Tatkal
// quota the request must fall inside the class group's opening window
// on the day before the journey, and the tatkal per-km rate replaces
// the base rate.  The surge multiplier (if any rule is active) is
// applied last and the result rounded to 2 decimals, half-up.
func (c *Calculator) Price(trainID uint64, distanceKm float64, class model.CoachClass, quota model.Quota, journeyDate string) (float64, error) {
	rate, ok := c.baseRate[class]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoRate, class)
	}
	if quota == model.QuotaTatkal {
		if err := c.checkTatkalWindow(class, journeyDate); err != nil {
			return 0, err
		}
		trate, ok := c.tatkalRate[class]
		if !ok {
			return 0, fmt.Errorf("%w: %s (tatkal)", ErrNoRate, class)
		}
		rate = trate // replaces, not stacked with, the base per-km rate
	}
	amount := rate * distanceKm

	mult, err := c.surgeMultiplier(trainID, class, journeyDate)
	if err != nil {
		return 0, err
	}
	return roundHalfUp(amount * mult), nil
}

// checkTatkalWindow validates that the current time falls inside the
// [open, close) window on the day before the journey for the class
// group.  The boundary instant itself is accepted: a request at exactly
// the opening second succeeds, one second earlier fails.
func (c *Calculator) checkTatkalWindow(class model.CoachClass, journeyDate string) error {
	day, err := time.ParseInLocation("2006-01-02", journeyDate, time.UTC)
	if err != nil {
		return fmt.Errorf("bad journey date %q: %w", journeyDate, err)
	}
	openClock, closeClock := c.windows.NonACOpen, c.windows.NonACClose
	if class.IsAC() {
		openClock, closeClock = c.windows.ACOpen, c.windows.ACClose
	}
	bookDay := day.AddDate(0, 0, -1)
	open, err := atClock(bookDay, openClock)
	if err != nil {
		return err
	}
	close, err := atClock(bookDay, closeClock)
	if err != nil {
		return err
	}
	now := c.clock()
	if now.Before(open) || !now.Before(close) {
		return fmt.Errorf("%w: class %s opens %s and closes %s (booking day %s)",
			ErrTatkalClosed, class, openClock, closeClock, bookDay.Format("2006-01-02"))
	}
	return nil
}

// surgeMultiplier returns the active multiplier for the key, 1.0 when
// no rule matches, and ErrPricingConflict when more than one does.
func (c *Calculator) surgeMultiplier(trainID uint64, class model.CoachClass, journeyDate string) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mult := 1.0
	matched := 0
	for _, r := range c.surge {
		if r.covers(trainID, class, journeyDate) {
			matched++
			mult = r.Multiplier
		}
	}
	if matched > 1 {
		return 0, fmt.Errorf("%w: %d active rules for train %d class %s on %s",
			ErrPricingConflict, matched, trainID, class, journeyDate)
	}
	return mult, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.ParseInLocation("15:04:05", clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

// roundHalfUp rounds to 2 decimal places with ties away from zero in
// the positive direction (0.005 -> 0.01), matching how fares are
// printed on tickets.
func roundHalfUp(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
