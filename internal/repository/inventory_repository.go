package repository

import (
	"context"
	"database/sql"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// InventoryRepo persists bucket snapshots.  The in-memory store owns
// the counters; each mutation is mirrored here so availability queries
// and post-restart audits have durable rows to read.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// UpsertBucket writes one bucket snapshot, replacing any previous row
// for the same key.  Last write wins; the in-memory store serialises
// mutations per key so snapshots arrive in order.
func (r *InventoryRepo) UpsertBucket(ctx context.Context, s model.BucketSnapshot) error {
	const q = `INSERT INTO inventory_buckets
               (train_id, journey_date, class, quota,
                capacity, available, rac_capacity, rac_available,
                confirmed, rac, waitlisted, frozen, halted)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE
                 available = VALUES(available),
                 rac_available = VALUES(rac_available),
                 confirmed = VALUES(confirmed),
                 rac = VALUES(rac),
                 waitlisted = VALUES(waitlisted),
                 frozen = VALUES(frozen),
                 halted = VALUES(halted)`
	_, err := r.db.ExecContext(ctx, q,
		s.Key.TrainID, s.Key.JourneyDate, s.Key.Class, s.Key.Quota,
		s.Capacity, s.Available, s.RACCapacity, s.RACAvailable,
		s.Confirmed, s.RAC, s.Waitlisted, s.Frozen, s.Halted,
	)
	return err
}

// GetBucket reads back one snapshot row, mainly for operational checks.
func (r *InventoryRepo) GetBucket(ctx context.Context, key model.InventoryKey) (model.BucketSnapshot, error) {
	const q = `SELECT capacity, available, rac_capacity, rac_available,
                      confirmed, rac, waitlisted, frozen, halted
               FROM inventory_buckets
               WHERE train_id = ? AND journey_date = ? AND class = ? AND quota = ?`
	s := model.BucketSnapshot{Key: key}
	err := r.db.QueryRowContext(ctx, q, key.TrainID, key.JourneyDate, key.Class, key.Quota).Scan(
		&s.Capacity, &s.Available, &s.RACCapacity, &s.RACAvailable,
		&s.Confirmed, &s.RAC, &s.Waitlisted, &s.Frozen, &s.Halted,
	)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}
