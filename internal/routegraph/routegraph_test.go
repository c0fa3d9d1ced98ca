package routegraph

import (
	"errors"
	"math"
	"testing"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// fiveStops is a small linear route used across the tests: station IDs
// 101..105 at 0, 120, 250, 410 and 600 km from the origin.
func fiveStops() []model.RouteStop {
	return []model.RouteStop{
		{StationID: 101, Code: "NDLS", Sequence: 1, CumulativeKm: 0},
		{StationID: 102, Code: "MTJ", Sequence: 2, CumulativeKm: 120},
		{StationID: 103, Code: "AGC", Sequence: 3, CumulativeKm: 250},
		{StationID: 104, Code: "JHS", Sequence: 4, CumulativeKm: 410},
		{StationID: 105, Code: "BPL", Sequence: 5, CumulativeKm: 600},
	}
}

func TestDistance(t *testing.T) {
	g, err := New(12001, fiveStops())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		name     string
		from, to uint64
		want     float64
	}{
		{"adjacent", 101, 102, 120},
		{"span", 102, 105, 480},
		{"full route", 101, 105, 600},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.Distance(tc.from, tc.to)
			if err != nil {
				t.Fatalf("Distance(%d,%d): %v", tc.from, tc.to, err)
			}
			if got != tc.want {
				t.Fatalf("Distance(%d,%d) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestDistanceInvalidRoute(t *testing.T) {
	g, err := New(12001, fiveStops())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := []struct {
		name     string
		from, to uint64
	}{
		{"reversed direction", 105, 103}, // sequence 5 before sequence 3
		{"same station", 103, 103},
		{"origin off route", 999, 103},
		{"destination off route", 101, 999},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := g.Distance(tc.from, tc.to); !errors.Is(err, ErrInvalidRoute) {
				t.Fatalf("Distance(%d,%d) err = %v, want ErrInvalidRoute", tc.from, tc.to, err)
			}
		})
	}
}

// Segment distances must compose: d(A,C) = d(A,B) + d(B,C) for any B
// strictly between A and C.
func TestDistanceMonotonicity(t *testing.T) {
	stops := fiveStops()
	g, err := New(12001, stops)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for ai := 0; ai < len(stops); ai++ {
		for ci := ai + 2; ci < len(stops); ci++ {
			for bi := ai + 1; bi < ci; bi++ {
				a, b, c := stops[ai].StationID, stops[bi].StationID, stops[ci].StationID
				ac, _ := g.Distance(a, c)
				ab, _ := g.Distance(a, b)
				bc, _ := g.Distance(b, c)
				if math.Abs(ac-(ab+bc)) > 1e-9 {
					t.Fatalf("d(%d,%d)=%v but d(%d,%d)+d(%d,%d)=%v", a, c, ac, a, b, b, c, ab+bc)
				}
			}
		}
	}
}

func TestNewRejectsBadRoutes(t *testing.T) {
	base := fiveStops()

	short := base[:1]
	if _, err := New(1, short); err == nil {
		t.Fatal("expected error for single-stop route")
	}

	dup := fiveStops()
	dup[3].StationID = dup[1].StationID
	if _, err := New(1, dup); err == nil {
		t.Fatal("expected error for duplicate station")
	}

	badSeq := fiveStops()
	badSeq[2].Sequence = badSeq[1].Sequence
	if _, err := New(1, badSeq); err == nil {
		t.Fatal("expected error for non-increasing sequence")
	}

	badDist := fiveStops()
	badDist[2].CumulativeKm = badDist[1].CumulativeKm - 5
	if _, err := New(1, badDist); err == nil {
		t.Fatal("expected error for non-increasing distance")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	g, err := New(12001, fiveStops())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Add(g)

	got, err := r.Graph(12001)
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if got.TrainID() != 12001 {
		t.Fatalf("TrainID = %d, want 12001", got.TrainID())
	}
	if _, err := r.Graph(99999); !errors.Is(err, ErrUnknownTrain) {
		t.Fatalf("err = %v, want ErrUnknownTrain", err)
	}
}
