package repository

import (
	"context"
	"database/sql"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// WaitlistRepo records the lifecycle of waitlist entries.  Rows are
// append-then-update: one row per enqueue, its status column rewritten
// as the entry is promoted, cancelled or expired.
type WaitlistRepo struct {
	db *sql.DB
}

// NewWaitlistRepo returns a new WaitlistRepo bound to the given database.
func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// Append inserts one waitlist entry in WAITING state.
func (r *WaitlistRepo) Append(ctx context.Context, e model.WaitlistEntrySnapshot) error {
	const q = `INSERT INTO waitlist_entries
               (train_id, journey_date, class, quota, pnr, seq, type, passengers, status, enqueued_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		e.Key.TrainID, e.Key.JourneyDate, e.Key.Class, e.Key.Quota,
		e.PNR, e.Seq, e.Type, e.Passengers, e.Status, fmtTime(e.EnqueuedAt),
	)
	return err
}

// UpdateStatus rewrites the status of the entry for a PNR.  A PNR is
// waitlisted at most once, so the predicate needs no key columns.
func (r *WaitlistRepo) UpdateStatus(ctx context.Context, pnr, status string) error {
	const q = `UPDATE waitlist_entries SET status = ? WHERE pnr = ?`
	_, err := r.db.ExecContext(ctx, q, status, pnr)
	return err
}
