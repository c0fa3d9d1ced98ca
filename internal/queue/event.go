// Package queue defines message payloads exchanged over the message
// broker and the background consumer that audits them.
package queue

import "github.com/Hemanth509h/RailServe-sub000/internal/model"

// Event types carried on the reservation.events queue.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventWaitlistPromoted = "waitlist.promoted"
	EventBookingCancelled = "booking.cancelled"
)

// Event is a booking lifecycle notification.  It carries enough for
// downstream consumers (notification, analytics, audit) to act without
// querying the primary store.
type Event struct {
	Type       string                 `json:"type"`
	PNR        string                 `json:"pnr"`
	Key        string                 `json:"inventory_key"` // train/date/class/quota
	Status     string                 `json:"status"`
	Seats      []model.SeatAssignment `json:"seats,omitempty"`
	FareAmount float64                `json:"fare_amount"`
	Reason     string                 `json:"reason,omitempty"`
	OccurredAt string                 `json:"occurred_at"`
}
