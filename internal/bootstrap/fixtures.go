package bootstrap

import (
	"time"

	"github.com/Hemanth509h/RailServe-sub000/internal/fare"
	"github.com/Hemanth509h/RailServe-sub000/internal/model"
	"github.com/Hemanth509h/RailServe-sub000/internal/repository"
	"github.com/Hemanth509h/RailServe-sub000/internal/routegraph"
)

// Fixtures builds a self-contained world with two seeded trains, used
// when APP_USE_FIXTURES is set and in tests that need a realistic
// topology without a database.
func Fixtures() (*World, error) {
	trains := []model.Train{
		{ID: 12951, Number: "12951", Name: "Mumbai Rajdhani"},
		{ID: 12009, Number: "12009", Name: "Shatabdi Express"},
	}

	registry := routegraph.NewRegistry()
	rajdhani, err := routegraph.New(12951, []model.RouteStop{
		{StationID: 1, Code: "BCT", Sequence: 1, CumulativeKm: 0, DepartMin: 0},
		{StationID: 2, Code: "BVI", Sequence: 2, CumulativeKm: 34, ArriveMin: 35, DepartMin: 38},
		{StationID: 3, Code: "ST", Sequence: 3, CumulativeKm: 263, ArriveMin: 195, DepartMin: 200},
		{StationID: 4, Code: "BRC", Sequence: 4, CumulativeKm: 392, ArriveMin: 305, DepartMin: 315},
		{StationID: 5, Code: "RTM", Sequence: 5, CumulativeKm: 654, ArriveMin: 540, DepartMin: 545},
		{StationID: 6, Code: "KOTA", Sequence: 6, CumulativeKm: 919, ArriveMin: 760, DepartMin: 770},
		{StationID: 7, Code: "NDLS", Sequence: 7, CumulativeKm: 1384, ArriveMin: 1120},
	})
	if err != nil {
		return nil, err
	}
	registry.Add(rajdhani)

	shatabdi, err := routegraph.New(12009, []model.RouteStop{
		{StationID: 1, Code: "BCT", Sequence: 1, CumulativeKm: 0, DepartMin: 0},
		{StationID: 8, Code: "ADI", Sequence: 2, CumulativeKm: 491, ArriveMin: 390},
	})
	if err != nil {
		return nil, err
	}
	registry.Add(shatabdi)

	base := map[model.CoachClass]float64{
		model.Class2ndSit:  0.45,
		model.ClassSleeper: 0.60,
		model.ClassACChair: 1.10,
		model.ClassAC3Tier: 1.50,
		model.ClassAC2Tier: 2.20,
		model.ClassAC1st:   3.80,
	}
	tatkal := map[model.CoachClass]float64{
		model.Class2ndSit:  0.60,
		model.ClassSleeper: 0.80,
		model.ClassACChair: 1.45,
		model.ClassAC3Tier: 2.00,
		model.ClassAC2Tier: 2.90,
		model.ClassAC1st:   4.90,
	}
	calc := fare.New(base, tatkal, fare.DefaultTatkalWindows())

	allocs := []repository.AllocationConfig{
		{TrainID: 12951, Class: model.ClassAC3Tier, Quota: model.QuotaGeneral, Capacity: 128, RACCapacity: 16},
		{TrainID: 12951, Class: model.ClassAC3Tier, Quota: model.QuotaTatkal, Capacity: 32, RACCapacity: 8},
		{TrainID: 12951, Class: model.ClassAC2Tier, Quota: model.QuotaGeneral, Capacity: 46, RACCapacity: 6},
		{TrainID: 12951, Class: model.ClassAC1st, Quota: model.QuotaGeneral, Capacity: 18},
		{TrainID: 12951, Class: model.ClassSleeper, Quota: model.QuotaGeneral, Capacity: 216, RACCapacity: 24},
		{TrainID: 12951, Class: model.ClassSleeper, Quota: model.QuotaLadies, Capacity: 12},
		{TrainID: 12951, Class: model.ClassSleeper, Quota: model.QuotaSenior, Capacity: 12},
		{TrainID: 12009, Class: model.ClassACChair, Quota: model.QuotaGeneral, Capacity: 156, RACCapacity: 12},
		{TrainID: 12009, Class: model.ClassACChair, Quota: model.QuotaTatkal, Capacity: 40, RACCapacity: 8},
		{TrainID: 12009, Class: model.Class2ndSit, Quota: model.QuotaGeneral, Capacity: 108},
	}
	inv, err := openBuckets(allocs, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &World{Trains: trains, Routes: registry, Fares: calc, Inv: inv}, nil
}
