package repository

import (
	"context"
	"database/sql"

	"github.com/Hemanth509h/RailServe-sub000/internal/fare"
	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// FareRepo loads pricing reference data: per-km rates by coach class
// and the active dynamic-pricing (surge) rules.
type FareRepo struct {
	db *sql.DB
}

// NewFareRepo returns a new FareRepo bound to the given database.
func NewFareRepo(db *sql.DB) *FareRepo { return &FareRepo{db: db} }

// LoadRates returns the base and tatkal per-km rates keyed by class.
// The tatkal rate replaces the base rate inside the tatkal window; both
// come from the same fare_rates row.
func (r *FareRepo) LoadRates(ctx context.Context) (base, tatkal map[model.CoachClass]float64, err error) {
	const q = `SELECT class, base_per_km, tatkal_per_km FROM fare_rates`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	base = make(map[model.CoachClass]float64)
	tatkal = make(map[model.CoachClass]float64)
	for rows.Next() {
		var class model.CoachClass
		var b, t float64
		if err := rows.Scan(&class, &b, &t); err != nil {
			return nil, nil, err
		}
		base[class] = b
		tatkal[class] = t
	}
	return base, tatkal, rows.Err()
}

// LoadSurgeRules returns every dynamic-pricing rule.  Overlap between
// rules is not resolved here: the fare calculator surfaces conflicts on
// the requests they affect.
func (r *FareRepo) LoadSurgeRules(ctx context.Context) ([]fare.SurgeRule, error) {
	const q = `SELECT train_id, class, from_date, to_date, multiplier
               FROM surge_rules ORDER BY train_id, class, from_date`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []fare.SurgeRule
	for rows.Next() {
		var sr fare.SurgeRule
		if err := rows.Scan(&sr.TrainID, &sr.Class, &sr.FromDate, &sr.ToDate, &sr.Multiplier); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
