// Package routegraph models a train's ordered stop sequence.  A train
// runs a fixed linear path, so route validation is an ordering check
// over a validated array with prefix-sum distances, not a graph search.
package routegraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// ErrInvalidRoute is returned when the requested origin does not appear
// strictly before the requested destination on the train's route, or
// when either station is not on the route at all.  Handlers translate
// it into an HTTP 400 response.
var ErrInvalidRoute = errors.New("invalid route")

// ErrUnknownTrain is returned by the registry when no graph has been
// built for the requested train.
var ErrUnknownTrain = errors.New("unknown train")

// Graph holds one train's validated stop list.  It is immutable after
// construction and safe for unlimited concurrent reads without locks.
type Graph struct {
	trainID uint64
	stops   []model.RouteStop
	index   map[uint64]int // station ID -> position in stops
}

// New builds a Graph from a train's ordered stop list.  It rejects
// routes with fewer than two stops, duplicate stations, or sequence /
// cumulative-distance values that are not strictly increasing.
func New(trainID uint64, stops []model.RouteStop) (*Graph, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("train %d: route needs at least 2 stops, got %d", trainID, len(stops))
	}
	index := make(map[uint64]int, len(stops))
	for i, s := range stops {
		if _, dup := index[s.StationID]; dup {
			return nil, fmt.Errorf("train %d: station %d appears twice on route", trainID, s.StationID)
		}
		if i > 0 {
			prev := stops[i-1]
			if s.Sequence <= prev.Sequence {
				return nil, fmt.Errorf("train %d: sequence not strictly increasing at stop %d (%d after %d)",
					trainID, i, s.Sequence, prev.Sequence)
			}
			if s.CumulativeKm <= prev.CumulativeKm {
				return nil, fmt.Errorf("train %d: cumulative distance not strictly increasing at stop %d (%.1f after %.1f)",
					trainID, i, s.CumulativeKm, prev.CumulativeKm)
			}
		}
		index[s.StationID] = i
	}
	// Copy so later mutation of the caller's slice cannot break immutability.
	own := make([]model.RouteStop, len(stops))
	copy(own, stops)
	return &Graph{trainID: trainID, stops: own, index: index}, nil
}

// TrainID returns the train this graph was built for.
func (g *Graph) TrainID() uint64 { return g.trainID }

// Stops returns a copy of the ordered stop list for read-only display.
func (g *Graph) Stops() []model.RouteStop {
	out := make([]model.RouteStop, len(g.stops))
	copy(out, g.stops)
	return out
}

// Distance returns the segment distance in km between two stations on
// the route.  It fails with ErrInvalidRoute unless from appears
// strictly before to in the stop sequence; on success the result is
// always > 0 because cumulative distances are strictly increasing.
func (g *Graph) Distance(fromStationID, toStationID uint64) (float64, error) {
	fi, ok := g.index[fromStationID]
	if !ok {
		return 0, fmt.Errorf("%w: station %d is not on train %d", ErrInvalidRoute, fromStationID, g.trainID)
	}
	ti, ok := g.index[toStationID]
	if !ok {
		return 0, fmt.Errorf("%w: station %d is not on train %d", ErrInvalidRoute, toStationID, g.trainID)
	}
	if fi >= ti {
		return 0, fmt.Errorf("%w: station %d (seq %d) does not precede station %d (seq %d) on train %d",
			ErrInvalidRoute, fromStationID, g.stops[fi].Sequence, toStationID, g.stops[ti].Sequence, g.trainID)
	}
	return g.stops[ti].CumulativeKm - g.stops[fi].CumulativeKm, nil
}

// Registry maps train IDs to their route graphs.  Graphs are added once
// at bootstrap; lookups afterwards are read-locked only.
type Registry struct {
	mu     sync.RWMutex
	graphs map[uint64]*Graph
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{graphs: make(map[uint64]*Graph)}
}

// Add registers a graph, replacing any previous graph for the train.
func (r *Registry) Add(g *Graph) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.graphs[g.TrainID()] = g
}

// Graph returns the route graph for a train, or ErrUnknownTrain.
func (r *Registry) Graph(trainID uint64) (*Graph, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.graphs[trainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTrain, trainID)
	}
	return g, nil
}
