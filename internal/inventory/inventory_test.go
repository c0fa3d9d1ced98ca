package inventory

import (
	"errors"
	"sync"
	"testing"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

func testKey() model.InventoryKey {
	return model.InventoryKey{TrainID: 12001, JourneyDate: "2026-09-01", Class: model.ClassAC3Tier, Quota: model.QuotaGeneral}
}

func newTestStore(t *testing.T, capacity, rac int) *Store {
	t.Helper()
	s := NewStore()
	if err := s.Configure(testKey(), capacity, rac); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return s
}

func TestReserveAndRelease(t *testing.T) {
	s := newTestStore(t, 10, 0)
	key := testKey()

	res, err := s.Reserve(key, 3, model.QuotaGeneral, nil, nil)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if res == nil || res.Pool != PoolConfirmed || len(res.Seats) != 3 {
		t.Fatalf("unexpected reservation: %+v", res)
	}
	snap, _ := s.Snapshot(key)
	if snap.Available != 7 || snap.Confirmed != 3 {
		t.Fatalf("snapshot after reserve = %+v", snap)
	}

	// Round trip: releasing the same count restores the prior state.
	if err := s.Release(key, 3, PoolConfirmed, res.Seats); err != nil {
		t.Fatalf("Release: %v", err)
	}
	snap, _ = s.Snapshot(key)
	if snap.Available != 10 || snap.Confirmed != 0 {
		t.Fatalf("snapshot after release = %+v", snap)
	}
}

func TestReserveFallsBackToRAC(t *testing.T) {
	s := newTestStore(t, 1, 2)
	key := testKey()

	if _, err := s.Reserve(key, 1, model.QuotaGeneral, nil, nil); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	res, err := s.Reserve(key, 2, model.QuotaGeneral, nil, nil)
	if err != nil {
		t.Fatalf("Reserve (RAC): %v", err)
	}
	if res == nil || res.Pool != PoolRAC {
		t.Fatalf("expected RAC fallback, got %+v", res)
	}
	for _, seat := range res.Seats {
		if !seat.Shared || seat.Berth != model.BerthSideLower {
			t.Fatalf("RAC seat should be a shared side-lower, got %+v", seat)
		}
	}
}

func TestQuotaWithoutRACGoesExhausted(t *testing.T) {
	s := NewStore()
	key := model.InventoryKey{TrainID: 1, JourneyDate: "2026-09-01", Class: model.ClassSleeper, Quota: model.QuotaLadies}
	if err := s.Configure(key, 1, 5); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if _, err := s.Reserve(key, 1, model.QuotaLadies, nil, nil); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	called := false
	res, err := s.Reserve(key, 1, model.QuotaLadies, nil, func() error { called = true; return nil })
	if err != nil || res != nil {
		t.Fatalf("expected exhausted outcome, got res=%+v err=%v", res, err)
	}
	if !called {
		t.Fatal("onExhausted was not invoked")
	}
}

func TestExhaustedCallbackErrorPassesThrough(t *testing.T) {
	s := newTestStore(t, 0, 0)
	wantErr := errors.New("waitlist full")
	_, err := s.Reserve(testKey(), 1, model.QuotaGeneral, nil, func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

// Over-releasing must halt the key, not clamp the counter.
func TestOverReleaseCorruptsKey(t *testing.T) {
	s := newTestStore(t, 5, 0)
	key := testKey()

	err := s.Release(key, 1, PoolConfirmed, nil)
	var corr *CorruptionError
	if !errors.As(err, &corr) {
		t.Fatalf("err = %v, want CorruptionError", err)
	}
	// The key is halted for all further allocation.
	if _, err := s.Reserve(key, 1, model.QuotaGeneral, nil, nil); !errors.As(err, &corr) {
		t.Fatalf("Reserve on halted key err = %v, want CorruptionError", err)
	}
}

// Under any interleaving, confirmed + RAC held never exceeds the
// configured capacity.
func TestConcurrentReserveNeverOverallocates(t *testing.T) {
	const capacity = 20
	const workers = 64
	s := newTestStore(t, capacity, 0)
	key := testKey()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Reserve(key, 1, model.QuotaGeneral, nil, nil)
			if err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			if res != nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != capacity {
		t.Fatalf("granted %d reservations, want exactly %d", granted, capacity)
	}
	snap, _ := s.Snapshot(key)
	if snap.Confirmed != capacity || snap.Available != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestReleasePromotesOncePerFreedUnit(t *testing.T) {
	s := newTestStore(t, 3, 0)
	key := testKey()

	res, err := s.Reserve(key, 3, model.QuotaGeneral, nil, nil)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// Promotion queue of two single-seat entries: releasing three seats
	// must promote both and leave one seat free.
	pending := 2
	promoted := 0
	s.SetPromoter(func(k model.InventoryKey, pool Pool, remaining int, alloc AllocFunc) (int, int) {
		if pending == 0 {
			return 0, 0
		}
		pending--
		promoted++
		if seats := alloc(1, nil); len(seats) != 1 {
			t.Errorf("alloc returned %d seats, want 1", len(seats))
		}
		return 1, 0
	})

	if err := s.Release(key, 3, PoolConfirmed, res.Seats); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if promoted != 2 {
		t.Fatalf("promoted %d entries, want 2", promoted)
	}
	snap, _ := s.Snapshot(key)
	if snap.Available != 1 || snap.Confirmed != 2 {
		t.Fatalf("snapshot = %+v, want 1 available / 2 confirmed", snap)
	}
}

func TestChartPrepSweepsAndFreezes(t *testing.T) {
	s := newTestStore(t, 2, 0)
	key := testKey()

	pending := 1
	s.SetPromoter(func(k model.InventoryKey, pool Pool, remaining int, alloc AllocFunc) (int, int) {
		if pending == 0 || pool != PoolConfirmed {
			return 0, 0
		}
		pending--
		alloc(1, nil)
		return 1, 0
	})
	if err := s.ChartPrep(key); err != nil {
		t.Fatalf("ChartPrep: %v", err)
	}
	snap, _ := s.Snapshot(key)
	if !snap.Frozen || snap.Confirmed != 1 {
		t.Fatalf("snapshot = %+v, want frozen with 1 confirmed", snap)
	}
	// Frozen keys reject new reservations and skip promotion on release.
	if _, err := s.Reserve(key, 1, model.QuotaGeneral, nil, nil); !errors.Is(err, ErrFrozen) {
		t.Fatalf("Reserve on frozen key err = %v, want ErrFrozen", err)
	}
	if err := s.ChartPrep(key); err != nil {
		t.Fatalf("second ChartPrep should be idempotent: %v", err)
	}
}

// Entries that expire during the promotion scan left the queue without
// taking a seat; the waitlisted counter must drop for them too.
func TestExpiredEntriesDecrementWaitlisted(t *testing.T) {
	s := newTestStore(t, 1, 0)
	key := testKey()

	res, err := s.Reserve(key, 1, model.QuotaGeneral, nil, nil)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.Reserve(key, 1, model.QuotaGeneral, nil, func() error { return nil }); err != nil {
			t.Fatalf("Reserve (exhausted): %v", err)
		}
	}
	snap, _ := s.Snapshot(key)
	if snap.Waitlisted != 2 {
		t.Fatalf("waitlisted = %d, want 2", snap.Waitlisted)
	}

	// The scan expires one stale entry and promotes the next.
	reported := false
	s.SetPromoter(func(k model.InventoryKey, pool Pool, remaining int, alloc AllocFunc) (int, int) {
		if reported {
			return 0, 0
		}
		reported = true
		alloc(1, nil)
		return 1, 1
	})
	if err := s.Release(key, 1, PoolConfirmed, res.Seats); err != nil {
		t.Fatalf("Release: %v", err)
	}
	snap, _ = s.Snapshot(key)
	if snap.Waitlisted != 0 {
		t.Fatalf("waitlisted = %d after expiry + promotion, want 0", snap.Waitlisted)
	}
	if snap.Confirmed != 1 || snap.Available != 0 {
		t.Fatalf("snapshot = %+v, want 1 confirmed / 0 available", snap)
	}
}

func TestBerthPreferenceBestEffort(t *testing.T) {
	s := newTestStore(t, 16, 0)
	key := testKey()

	// A 72-berth pattern has two lower berths per eight-seat bay; a
	// 16-berth bucket has four lowers. Ask for six lowers: four honour
	// the preference, the remaining two get some other berth instead of
	// failing.
	prefs := make([]model.BerthType, 6)
	for i := range prefs {
		prefs[i] = model.BerthLower
	}
	res, err := s.Reserve(key, 6, model.QuotaGeneral, prefs, nil)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(res.Seats) != 6 {
		t.Fatalf("assigned %d seats, want 6", len(res.Seats))
	}
	lowers := 0
	for _, seat := range res.Seats {
		if seat.Berth == model.BerthLower {
			lowers++
		}
	}
	if lowers != 4 {
		t.Fatalf("honoured %d lower-berth preferences, want 4", lowers)
	}
}

func TestUnknownKey(t *testing.T) {
	s := NewStore()
	if _, err := s.Reserve(testKey(), 1, model.QuotaGeneral, nil, nil); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err = %v, want ErrUnknownKey", err)
	}
}
