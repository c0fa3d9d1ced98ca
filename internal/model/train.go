package model

// CoachClass identifies the accommodation class of a coach.  The string
// values follow the railway's two-character class codes and are used
// directly as database values and JSON payloads.
type CoachClass string

const (
	ClassSleeper CoachClass = "SL" // non-AC three tier sleeper
	ClassAC3Tier CoachClass = "3A"
	ClassAC2Tier CoachClass = "2A"
	ClassAC1st   CoachClass = "1A"
	ClassACChair CoachClass = "CC"
	Class2ndSit  CoachClass = "2S" // non-AC second sitting
)

// IsAC reports whether the class belongs to the air-conditioned group.
// The distinction matters for Tatkal opening windows: AC classes open
// earlier than non-AC classes.
func (c CoachClass) IsAC() bool {
	switch c {
	case ClassAC3Tier, ClassAC2Tier, ClassAC1st, ClassACChair:
		return true
	}
	return false
}

// Valid reports whether the class code is one of the known classes.
func (c CoachClass) Valid() bool {
	switch c {
	case ClassSleeper, ClassAC3Tier, ClassAC2Tier, ClassAC1st, ClassACChair, Class2ndSit:
		return true
	}
	return false
}

// Quota is an allocation category that partitions a train's capacity
// into independent inventories.  Each (train, date, class, quota)
// combination has its own seat bucket and waitlist.
type Quota string

const (
	QuotaGeneral   Quota = "GN"
	QuotaTatkal    Quota = "TQ"
	QuotaLadies    Quota = "LD"
	QuotaSenior    Quota = "SS"
	QuotaEmergency Quota = "HO"
)

// Valid reports whether the quota code is one of the known quotas.
func (q Quota) Valid() bool {
	switch q {
	case QuotaGeneral, QuotaTatkal, QuotaLadies, QuotaSenior, QuotaEmergency:
		return true
	}
	return false
}

// SupportsRAC reports whether exhausted bookings under this quota may
// fall back to a shared (RAC) berth before being waitlisted.  Only the
// general and tatkal quotas carry RAC capacity; the narrower quotas go
// straight to their waitlist.
func (q Quota) SupportsRAC() bool {
	return q == QuotaGeneral || q == QuotaTatkal
}

// WaitlistType is the category printed on a waitlisted ticket.  Each
// type has its own FIFO queue scoped to the inventory key, so promotion
// never crosses types.
type WaitlistType string

const (
	WaitlistGeneral WaitlistType = "GNWL"
	WaitlistRAC     WaitlistType = "RAC"
	WaitlistPooled  WaitlistType = "PQWL"
	WaitlistRemote  WaitlistType = "RLWL"
	WaitlistTatkal  WaitlistType = "TQWL"
)

// WaitlistTypeFor maps a quota to the waitlist category its exhausted
// bookings join.  The pooled category covers the narrow quotas that
// have no dedicated list of their own.
func WaitlistTypeFor(q Quota) WaitlistType {
	switch q {
	case QuotaGeneral:
		return WaitlistGeneral
	case QuotaTatkal:
		return WaitlistTatkal
	default:
		return WaitlistPooled
	}
}

// Train is immutable reference data describing one scheduled service.
type Train struct {
	ID     uint64 // trains.id
	Number string // trains.number (public five-digit train number)
	Name   string // trains.name
}
