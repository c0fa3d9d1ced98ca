package model

import "time"

// BookingStatus is the admission state of a booking.  It tracks the
// seat allocation outcome; payment progress is tracked separately in
// PaymentStatus so that "confirmed, awaiting payment" and "confirmed,
// paid" share one allocation state.
type BookingStatus string

const (
	StatusConfirmed     BookingStatus = "CONFIRMED"
	StatusRAC           BookingStatus = "RAC"
	StatusWaitlisted    BookingStatus = "WAITLISTED"
	StatusCancelled     BookingStatus = "CANCELLED"
	StatusRefundPending BookingStatus = "REFUND_PENDING"
	StatusExpired       BookingStatus = "EXPIRED"
)

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	switch s {
	case StatusCancelled, StatusRefundPending, StatusExpired:
		return true
	}
	return false
}

// PaymentStatus tracks the payment leg of a booking independently of
// its seat allocation.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// BerthType is a physical berth position inside a coach.  Passengers
// may declare a preference; assignment honours it best-effort.
type BerthType string

const (
	BerthLower     BerthType = "LB"
	BerthMiddle    BerthType = "MB"
	BerthUpper     BerthType = "UB"
	BerthSideLower BerthType = "SL"
	BerthSideUpper BerthType = "SU"
)

// Valid reports whether the berth code is one of the known positions.
func (b BerthType) Valid() bool {
	switch b {
	case BerthLower, BerthMiddle, BerthUpper, BerthSideLower, BerthSideUpper:
		return true
	}
	return false
}

// Passenger is one traveller on a booking.  BerthPreference may be
// empty when the passenger has no preference.
type Passenger struct {
	Name            string    // passengers.name
	Age             int       // passengers.age
	BerthPreference BerthType // passengers.berth_preference (optional)
}

// SeatAssignment maps one passenger to a physical berth.  It is
// populated only once the booking reaches CONFIRMED or RAC.
type SeatAssignment struct {
	Coach  string    `json:"coach"`  // coach label, e.g. "B2"
	Seat   int       `json:"seat"`   // seat number within the coach
	Berth  BerthType `json:"berth"`  // berth position
	Shared bool      `json:"shared"` // true for RAC (shared berth) slots
}

// Booking is one passenger name record.  The PNR is generated once at
// admission and never changes.  The inventory bucket for Key only ever
// holds the PNR, never the booking itself.
type Booking struct {
	PNR             string
	Key             InventoryKey
	FromStationID   uint64
	ToStationID     uint64
	Passengers      []Passenger
	Status          BookingStatus
	Payment         PaymentStatus
	WaitlistType    WaitlistType // set when the booking has been waitlisted
	DistanceKm      float64
	FareAmount      float64 // final fare in rupees, rounded to 2 decimals
	Seats           []SeatAssignment
	CancelReason    string // populated on CANCELLED/EXPIRED transitions
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaymentDeadline time.Time // PENDING payments past this instant are swept
}

// SeatCount returns the number of seats the booking occupies or would
// occupy, which is always the passenger count.
func (b *Booking) SeatCount() int { return len(b.Passengers) }

// WaitlistEntrySnapshot is the persisted view of one waitlist entry.
// Ordering in the backing store follows Seq, the process-wide insertion
// sequence number (timestamps are not used for ordering, to avoid
// clock-skew ties).
type WaitlistEntrySnapshot struct {
	Key        InventoryKey
	PNR        string
	Seq        uint64
	Type       WaitlistType
	Passengers int
	Status     string // WAITING, PROMOTED, CANCELLED or EXPIRED
	EnqueuedAt time.Time
}
