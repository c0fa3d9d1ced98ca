package repository

import (
	"context"
	"database/sql"
	"log"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// Persister bundles the write-side repositories behind the single
// interface the engine persists through.  Errors are logged here and
// not returned upstream of the engine's fire-and-forget calls; the
// in-memory state stays authoritative either way.
type Persister struct {
	Bookings  *BookingRepo
	Inventory *InventoryRepo
	Waitlist  *WaitlistRepo
}

// NewPersister wires all write repositories onto one database handle.
func NewPersister(db *sql.DB) *Persister {
	return &Persister{
		Bookings:  NewBookingRepo(db),
		Inventory: NewInventoryRepo(db),
		Waitlist:  NewWaitlistRepo(db),
	}
}

// SaveBooking inserts a freshly admitted booking.
func (p *Persister) SaveBooking(ctx context.Context, b *model.Booking) error {
	if err := p.Bookings.Create(ctx, b); err != nil {
		log.Printf("persist: save booking %s: %v", b.PNR, err)
		return err
	}
	return nil
}

// UpdateBooking rewrites a booking after a state transition.
func (p *Persister) UpdateBooking(ctx context.Context, b *model.Booking) error {
	if err := p.Bookings.Update(ctx, b); err != nil {
		log.Printf("persist: update booking %s: %v", b.PNR, err)
		return err
	}
	return nil
}

// SaveBucket mirrors one inventory bucket snapshot.
func (p *Persister) SaveBucket(ctx context.Context, snap model.BucketSnapshot) error {
	if err := p.Inventory.UpsertBucket(ctx, snap); err != nil {
		log.Printf("persist: bucket %s: %v", snap.Key, err)
		return err
	}
	return nil
}

// AppendWaitlist records one enqueue.
func (p *Persister) AppendWaitlist(ctx context.Context, e model.WaitlistEntrySnapshot) error {
	if err := p.Waitlist.Append(ctx, e); err != nil {
		log.Printf("persist: waitlist append %s: %v", e.PNR, err)
		return err
	}
	return nil
}

// UpdateWaitlistStatus records a promotion, cancellation or expiry.
func (p *Persister) UpdateWaitlistStatus(ctx context.Context, pnr, status string) error {
	if err := p.Waitlist.UpdateStatus(ctx, pnr, status); err != nil {
		log.Printf("persist: waitlist status %s: %v", pnr, err)
		return err
	}
	return nil
}
