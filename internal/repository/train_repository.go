package repository

import (
	"context"
	"database/sql"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// TrainRepo loads train and route reference data.  Routes are read once
// at bootstrap to build the in-memory route graphs; nothing here is on
// the booking hot path.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo returns a new TrainRepo bound to the given database.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// ListTrains returns all trains ordered by their public number.
func (r *TrainRepo) ListTrains(ctx context.Context) ([]model.Train, error) {
	const q = `SELECT id, number, name FROM trains ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Train
	for rows.Next() {
		var t model.Train
		if err := rows.Scan(&t.ID, &t.Number, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LoadRoutes returns the ordered stop list of every train, keyed by
// train ID.  Stops come back ordered by sequence so the route graph
// constructor can validate monotonicity directly.
func (r *TrainRepo) LoadRoutes(ctx context.Context) (map[uint64][]model.RouteStop, error) {
	const q = `SELECT rs.train_id, rs.station_id, st.code, rs.sequence,
                      rs.cumulative_km, rs.arrive_min, rs.depart_min
               FROM route_stops rs
               JOIN stations st ON st.id = rs.station_id
               ORDER BY rs.train_id, rs.sequence`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	routes := make(map[uint64][]model.RouteStop)
	for rows.Next() {
		var trainID uint64
		var s model.RouteStop
		if err := rows.Scan(&trainID, &s.StationID, &s.Code, &s.Sequence, &s.CumulativeKm, &s.ArriveMin, &s.DepartMin); err != nil {
			return nil, err
		}
		routes[trainID] = append(routes[trainID], s)
	}
	return routes, rows.Err()
}

// AllocationConfig is one row of the seat_allocations table: the
// configured confirm and RAC capacities for a (train, class, quota)
// combination.  The inventory store creates one bucket per journey
// date from each row.
type AllocationConfig struct {
	TrainID     uint64
	Class       model.CoachClass
	Quota       model.Quota
	Capacity    int
	RACCapacity int
}

// LoadAllocations returns the configured capacities for every train.
func (r *TrainRepo) LoadAllocations(ctx context.Context) ([]AllocationConfig, error) {
	const q = `SELECT train_id, class, quota, capacity, rac_capacity
               FROM seat_allocations ORDER BY train_id, class, quota`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AllocationConfig
	for rows.Next() {
		var a AllocationConfig
		if err := rows.Scan(&a.TrainID, &a.Class, &a.Quota, &a.Capacity, &a.RACCapacity); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
