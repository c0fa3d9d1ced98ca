package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// BookingRepo persists bookings, their passengers and seat
// assignments.  One bookings row per PNR; passengers and seats live in
// child tables replaced wholesale on update (bookings are small, the
// simplicity is worth more than the churn).
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// Create inserts a new booking with its passengers and any seat
// assignments in one transaction.  A duplicate PNR maps to
// ErrConflict.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO bookings
               (pnr, train_id, journey_date, class, quota, from_station_id, to_station_id,
                status, payment_status, waitlist_type, distance_km, fare_amount,
                cancel_reason, payment_deadline, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		b.PNR, b.Key.TrainID, b.Key.JourneyDate, b.Key.Class, b.Key.Quota,
		b.FromStationID, b.ToStationID,
		b.Status, b.Payment, b.WaitlistType, b.DistanceKm, b.FareAmount,
		b.CancelReason, fmtTime(b.PaymentDeadline), fmtTime(b.CreatedAt), fmtTime(b.UpdatedAt),
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 { // duplicate key
			return fmt.Errorf("%w: pnr %s", ErrConflict, b.PNR)
		}
		return err
	}
	if err := insertPassengersTx(ctx, tx, b); err != nil {
		return err
	}
	if err := insertSeatsTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites the mutable columns of a booking and replaces its
// seat assignment rows.  Passengers never change after admission.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `UPDATE bookings
               SET status = ?, payment_status = ?, waitlist_type = ?, cancel_reason = ?, updated_at = ?
               WHERE pnr = ?`
	res, err := tx.ExecContext(ctx, q, b.Status, b.Payment, b.WaitlistType, b.CancelReason, fmtTime(b.UpdatedAt), b.PNR)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Row may exist with identical values; verify before reporting.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE pnr = ?`, b.PNR).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: pnr %s", ErrNotFound, b.PNR)
			}
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_seats WHERE pnr = ?`, b.PNR); err != nil {
		return err
	}
	if err := insertSeatsTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByPNR loads one booking with its passengers and seats.  Used for
// warm-up after a restart and by operational tooling; live reads go to
// the engine's in-memory state.
func (r *BookingRepo) GetByPNR(ctx context.Context, pnr string) (*model.Booking, error) {
	const q = `SELECT pnr, train_id, journey_date, class, quota, from_station_id, to_station_id,
                      status, payment_status, waitlist_type, distance_km, fare_amount,
                      cancel_reason, payment_deadline, created_at, updated_at
               FROM bookings WHERE pnr = ?`
	var b model.Booking
	var deadline, created, updated string
	err := r.db.QueryRowContext(ctx, q, pnr).Scan(
		&b.PNR, &b.Key.TrainID, &b.Key.JourneyDate, &b.Key.Class, &b.Key.Quota,
		&b.FromStationID, &b.ToStationID,
		&b.Status, &b.Payment, &b.WaitlistType, &b.DistanceKm, &b.FareAmount,
		&b.CancelReason, &deadline, &created, &updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: pnr %s", ErrNotFound, pnr)
		}
		return nil, err
	}
	b.PaymentDeadline = parseTime(deadline)
	b.CreatedAt = parseTime(created)
	b.UpdatedAt = parseTime(updated)

	const pq = `SELECT name, age, berth_preference FROM booking_passengers WHERE pnr = ? ORDER BY id`
	prows, err := r.db.QueryContext(ctx, pq, pnr)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var p model.Passenger
		if err := prows.Scan(&p.Name, &p.Age, &p.BerthPreference); err != nil {
			return nil, err
		}
		b.Passengers = append(b.Passengers, p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	const sq = `SELECT coach, seat, berth, shared FROM booking_seats WHERE pnr = ? ORDER BY coach, seat`
	srows, err := r.db.QueryContext(ctx, sq, pnr)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var s model.SeatAssignment
		if err := srows.Scan(&s.Coach, &s.Seat, &s.Berth, &s.Shared); err != nil {
			return nil, err
		}
		b.Seats = append(b.Seats, s)
	}
	return &b, srows.Err()
}

func insertPassengersTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if len(b.Passengers) == 0 {
		return nil
	}
	query := `INSERT INTO booking_passengers (pnr, name, age, berth_preference) VALUES `
	args := make([]interface{}, 0, len(b.Passengers)*4)
	for i, p := range b.Passengers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, b.PNR, p.Name, p.Age, string(p.BerthPreference))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func insertSeatsTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	if len(b.Seats) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (pnr, coach, seat, berth, shared) VALUES `
	args := make([]interface{}, 0, len(b.Seats)*5)
	for i, s := range b.Seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, b.PNR, s.Coach, s.Seat, string(s.Berth), s.Shared)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func fmtTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func parseTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
