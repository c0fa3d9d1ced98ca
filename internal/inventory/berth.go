package inventory

import (
	"fmt"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// berthsPerCoach is the physical berth count of one coach.  The real
// layouts vary per class; a uniform 72-berth coach with the standard
// eight-berth bay pattern is close enough for assignment purposes.
const berthsPerCoach = 72

// bayPattern is the berth type of seat n within a bay: three tiers on
// each side of the aisle plus the two side berths.
var bayPattern = [8]model.BerthType{
	model.BerthLower, model.BerthMiddle, model.BerthUpper,
	model.BerthLower, model.BerthMiddle, model.BerthUpper,
	model.BerthSideLower, model.BerthSideUpper,
}

// anyBerthOrder is the fallback order when the preferred berth type is
// taken: lower berths go first because they are the most acceptable
// substitute for most passengers.
var anyBerthOrder = [5]model.BerthType{
	model.BerthLower, model.BerthMiddle, model.BerthUpper,
	model.BerthSideLower, model.BerthSideUpper,
}

// coachPrefix maps a class to its coach label letter (B2, A1, S4, ...).
var coachPrefix = map[model.CoachClass]string{
	model.ClassSleeper: "S",
	model.ClassAC3Tier: "B",
	model.ClassAC2Tier: "A",
	model.ClassAC1st:   "H",
	model.ClassACChair: "C",
	model.Class2ndSit:  "D",
}

// coach tracks the free berths of one physical coach, grouped by berth
// type so preference lookups are O(1).
type coach struct {
	label string
	free  map[model.BerthType][]int
	total int
}

func newCoach(label string, berths int) *coach {
	c := &coach{label: label, free: make(map[model.BerthType][]int)}
	for n := 1; n <= berths; n++ {
		bt := bayPattern[(n-1)%len(bayPattern)]
		c.free[bt] = append(c.free[bt], n)
		c.total++
	}
	return c
}

// take removes one berth, preferring pref when set and falling back to
// any free berth in the coach.  Returns false when the coach is full.
func (c *coach) take(pref model.BerthType) (model.SeatAssignment, bool) {
	if c.total == 0 {
		return model.SeatAssignment{}, false
	}
	order := anyBerthOrder[:]
	if pref != "" {
		order = append([]model.BerthType{pref}, order...)
	}
	for _, bt := range order {
		if ns := c.free[bt]; len(ns) > 0 {
			n := ns[0]
			c.free[bt] = ns[1:]
			c.total--
			return model.SeatAssignment{Coach: c.label, Seat: n, Berth: bt}, true
		}
	}
	return model.SeatAssignment{}, false
}

func (c *coach) put(seat model.SeatAssignment) {
	c.free[seat.Berth] = append(c.free[seat.Berth], seat.Seat)
	c.total++
}

// coachSet is the full-berth allocator of one bucket.  It is a
// best-effort mapper from abstract reserved counts to physical berths:
// it never blocks and never fails an already-granted reservation.
type coachSet struct {
	coaches []*coach
	byLabel map[string]*coach
}

func newCoachSet(class model.CoachClass, capacity int) *coachSet {
	prefix, ok := coachPrefix[class]
	if !ok {
		prefix = "X"
	}
	cs := &coachSet{byLabel: make(map[string]*coach)}
	for n, remaining := 1, capacity; remaining > 0; n++ {
		size := berthsPerCoach
		if remaining < size {
			size = remaining
		}
		c := newCoach(fmt.Sprintf("%s%d", prefix, n), size)
		cs.coaches = append(cs.coaches, c)
		cs.byLabel[c.label] = c
		remaining -= size
	}
	return cs
}

// allocate assigns count berths, keeping a party inside one coach when
// possible (the coach with the most free berths is tried first) and
// honouring per-passenger berth preferences best-effort.  Callers have
// already reserved the capacity, so allocate always returns count
// assignments.
func (cs *coachSet) allocate(count int, prefs []model.BerthType) []model.SeatAssignment {
	out := make([]model.SeatAssignment, 0, count)
	for i := 0; i < count; i++ {
		var pref model.BerthType
		if i < len(prefs) {
			pref = prefs[i]
		}
		c := cs.fullest()
		if c == nil {
			break
		}
		seat, ok := c.take(pref)
		if !ok {
			continue
		}
		out = append(out, seat)
	}
	return out
}

func (cs *coachSet) fullest() *coach {
	var best *coach
	for _, c := range cs.coaches {
		if c.total == 0 {
			continue
		}
		if best == nil || c.total > best.total {
			best = c
		}
	}
	return best
}

func (cs *coachSet) release(seats []model.SeatAssignment) {
	for _, s := range seats {
		if s.Shared {
			continue
		}
		if c, ok := cs.byLabel[s.Coach]; ok {
			c.put(s)
		}
	}
}

// racSet numbers the shared side-lower slots of a bucket.  Two RAC
// passengers share one physical berth; each slot is half a berth.
type racSet struct {
	free []int
}

func newRACSet(slots int) *racSet {
	r := &racSet{free: make([]int, 0, slots)}
	for n := 1; n <= slots; n++ {
		r.free = append(r.free, n)
	}
	return r
}

func (r *racSet) allocate(count int) []model.SeatAssignment {
	out := make([]model.SeatAssignment, 0, count)
	for i := 0; i < count && len(r.free) > 0; i++ {
		n := r.free[0]
		r.free = r.free[1:]
		out = append(out, model.SeatAssignment{
			Coach:  "RAC",
			Seat:   n,
			Berth:  model.BerthSideLower,
			Shared: true,
		})
	}
	return out
}

func (r *racSet) release(seats []model.SeatAssignment) {
	for _, s := range seats {
		if s.Shared {
			r.free = append(r.free, s.Seat)
		}
	}
}
