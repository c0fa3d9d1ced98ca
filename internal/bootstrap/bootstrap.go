// Package bootstrap assembles the engine's reference data: route
// graphs, fare rates and inventory buckets.  The data comes from MySQL
// in a normal deployment or from the bundled fixtures for local runs,
// demos and tests.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Hemanth509h/RailServe-sub000/internal/fare"
	"github.com/Hemanth509h/RailServe-sub000/internal/inventory"
	"github.com/Hemanth509h/RailServe-sub000/internal/model"
	"github.com/Hemanth509h/RailServe-sub000/internal/repository"
	"github.com/Hemanth509h/RailServe-sub000/internal/routegraph"
)

// HorizonDays is the advance reservation period: buckets are opened for
// journeys up to this many days out.
const HorizonDays = 60

// World is everything the engine needs wired at startup.
type World struct {
	Trains []model.Train
	Routes *routegraph.Registry
	Fares  *fare.Calculator
	Inv    *inventory.Store
}

// FromDB loads reference data through the repositories and opens the
// inventory buckets for the full reservation horizon starting today.
func FromDB(ctx context.Context, db *sql.DB) (*World, error) {
	trainRepo := repository.NewTrainRepo(db)
	fareRepo := repository.NewFareRepo(db)

	trains, err := trainRepo.ListTrains(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trains: %w", err)
	}
	routes, err := trainRepo.LoadRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load routes: %w", err)
	}
	registry := routegraph.NewRegistry()
	for trainID, stops := range routes {
		g, err := routegraph.New(trainID, stops)
		if err != nil {
			return nil, fmt.Errorf("route graph train %d: %w", trainID, err)
		}
		registry.Add(g)
	}

	base, tatkal, err := fareRepo.LoadRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fare rates: %w", err)
	}
	calc := fare.New(base, tatkal, fare.DefaultTatkalWindows())
	rules, err := fareRepo.LoadSurgeRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load surge rules: %w", err)
	}
	for _, r := range rules {
		if err := calc.AddSurgeRule(r); err != nil {
			return nil, fmt.Errorf("surge rule: %w", err)
		}
	}

	allocs, err := trainRepo.LoadAllocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	inv, err := openBuckets(allocs, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &World{Trains: trains, Routes: registry, Fares: calc, Inv: inv}, nil
}

// openBuckets configures one bucket per allocation row and journey date
// across the reservation horizon.
func openBuckets(allocs []repository.AllocationConfig, from time.Time) (*inventory.Store, error) {
	inv := inventory.NewStore()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for _, a := range allocs {
		for d := 0; d < HorizonDays; d++ {
			key := model.InventoryKey{
				TrainID:     a.TrainID,
				JourneyDate: day.AddDate(0, 0, d).Format("2006-01-02"),
				Class:       a.Class,
				Quota:       a.Quota,
			}
			rac := a.RACCapacity
			if !a.Quota.SupportsRAC() {
				rac = 0
			}
			if err := inv.Configure(key, a.Capacity, rac); err != nil {
				return nil, fmt.Errorf("configure bucket %s: %w", key, err)
			}
		}
	}
	return inv, nil
}
