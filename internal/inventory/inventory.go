// Package inventory holds the per-key seat buckets and the sharded
// locks that serialise all reservation traffic.  One mutex guards one
// (train, date, class, quota) bucket; unrelated keys never contend.
package inventory

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// ErrUnknownKey is returned when no bucket has been configured for the
// requested inventory key.
var ErrUnknownKey = errors.New("unknown inventory key")

// ErrFrozen is returned when a key has gone through chart preparation
// and accepts no further changes.
var ErrFrozen = errors.New("inventory frozen by chart preparation")

// CorruptionError reports that a release would have pushed a bucket
// past its configured capacity.  The key is halted: all further
// allocation on it fails until an operator intervenes.  The counters
// are never silently clamped.
type CorruptionError struct {
	Key model.InventoryKey
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("inventory corrupted on key %s: allocation halted", e.Key)
}

// Pool distinguishes the two capacity pools of a bucket.
type Pool int

const (
	PoolConfirmed Pool = iota // full berths
	PoolRAC                   // shared (side-lower) berths
)

// AllocFunc hands freed capacity back out during promotion.  It debits
// the pool by count and returns berth assignments, honouring the given
// preferences best-effort.  Only valid inside the promotion callback.
type AllocFunc func(count int, prefs []model.BerthType) []model.SeatAssignment

// PromoteFunc is invoked by Release and ChartPrep while the key lock is
// still held, once per batch of freed capacity.  remaining is the
// number of freed units not yet consumed; the callback promotes at most
// one waitlisted booking, allocates its seats through alloc, and
// returns the units consumed (0 means nothing left to promote) plus
// the number of queue entries it expired while scanning, so the bucket
// can keep its waitlisted counter honest.
type PromoteFunc func(key model.InventoryKey, pool Pool, remaining int, alloc AllocFunc) (used, expired int)

// Reservation is the successful outcome of Reserve.
type Reservation struct {
	Pool  Pool
	Seats []model.SeatAssignment
}

// Store owns every inventory bucket.  The outer map is guarded by a
// read-write mutex used only for bucket lookup and configuration; all
// counter mutations happen under the per-bucket mutex.
type Store struct {
	mu      sync.RWMutex
	buckets map[model.InventoryKey]*bucket
	promote PromoteFunc
	onSnap  func(model.BucketSnapshot)
}

type bucket struct {
	mu           sync.Mutex
	key          model.InventoryKey
	capacity     int
	available    int
	racCapacity  int
	racAvailable int
	confirmed    int
	racHeld      int
	waitlisted   int
	halted       bool
	frozen       bool
	coaches      *coachSet
	racSlots     *racSet
}

// NewStore returns an empty store.  Buckets are added with Configure.
func NewStore() *Store {
	return &Store{buckets: make(map[model.InventoryKey]*bucket)}
}

// SetPromoter installs the waitlist promotion callback.  Must be called
// before any Release; the engine wires itself in at construction.
func (s *Store) SetPromoter(f PromoteFunc) { s.promote = f }

// SetSnapshotHook installs a hook called with the bucket state after
// every mutation, outside the key lock.  Used for fire-and-forget
// persistence of bucket rows.
func (s *Store) SetSnapshotHook(f func(model.BucketSnapshot)) { s.onSnap = f }

// Configure creates (or replaces) the bucket for a key with the given
// confirm and RAC capacities.
func (s *Store) Configure(key model.InventoryKey, capacity, racCapacity int) error {
	if capacity < 0 || racCapacity < 0 {
		return fmt.Errorf("negative capacity for key %s", key)
	}
	b := &bucket{
		key:          key,
		capacity:     capacity,
		available:    capacity,
		racCapacity:  racCapacity,
		racAvailable: racCapacity,
		coaches:      newCoachSet(key.Class, capacity),
		racSlots:     newRACSet(racCapacity),
	}
	s.mu.Lock()
	s.buckets[key] = b
	s.mu.Unlock()
	return nil
}

// Keys returns the configured keys for one train and journey date, in
// no particular order.  Chart preparation sweeps every matching key.
func (s *Store) Keys(trainID uint64, journeyDate string) []model.InventoryKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.InventoryKey
	for k := range s.buckets {
		if k.TrainID == trainID && k.JourneyDate == journeyDate {
			out = append(out, k)
		}
	}
	return out
}

// Snapshot returns the current counters for a key.
func (s *Store) Snapshot(key model.InventoryKey) (model.BucketSnapshot, error) {
	b, err := s.bucket(key)
	if err != nil {
		return model.BucketSnapshot{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(), nil
}

func (s *Store) bucket(key model.InventoryKey) (*bucket, error) {
	s.mu.RLock()
	b, ok := s.buckets[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return b, nil
}

func (b *bucket) snapshotLocked() model.BucketSnapshot {
	return model.BucketSnapshot{
		Key:          b.key,
		Capacity:     b.capacity,
		Available:    b.available,
		RACCapacity:  b.racCapacity,
		RACAvailable: b.racAvailable,
		Confirmed:    b.confirmed,
		RAC:          b.racHeld,
		Waitlisted:   b.waitlisted,
		Frozen:       b.frozen,
		Halted:       b.halted,
	}
}

func (s *Store) emit(snap model.BucketSnapshot) {
	if s.onSnap != nil {
		s.onSnap(snap)
	}
}

// Reserve atomically claims count seats under the key's lock.  Full
// berths are tried first; quotas that support RAC fall back to shared
// berths.  When both pools are exhausted, onExhausted runs while the
// lock is still held (the engine enqueues to the waitlist there, so a
// racing release cannot slip between the capacity check and the
// enqueue) and Reserve returns (nil, nil): exhausted is a business
// outcome, not an error.  An error from onExhausted (waitlist full) is
// passed through.
func (s *Store) Reserve(key model.InventoryKey, count int, quota model.Quota, prefs []model.BerthType, onExhausted func() error) (*Reservation, error) {
	if count <= 0 {
		return nil, fmt.Errorf("reserve count must be positive, got %d", count)
	}
	b, err := s.bucket(key)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer func() { snap := b.snapshotLocked(); b.mu.Unlock(); s.emit(snap) }()

	if b.halted {
		return nil, &CorruptionError{Key: key}
	}
	if b.frozen {
		return nil, fmt.Errorf("%w: %s", ErrFrozen, key)
	}
	if b.available >= count {
		b.available -= count
		b.confirmed += count
		return &Reservation{Pool: PoolConfirmed, Seats: b.coaches.allocate(count, prefs)}, nil
	}
	if quota.SupportsRAC() && b.racAvailable >= count {
		b.racAvailable -= count
		b.racHeld += count
		return &Reservation{Pool: PoolRAC, Seats: b.racSlots.allocate(count)}, nil
	}
	if onExhausted != nil {
		if err := onExhausted(); err != nil {
			return nil, err
		}
		b.waitlisted++
	}
	return nil, nil
}

// Release returns count units to the given pool and hands the freed
// capacity to the waitlist, one promotion per freed unit, strictly in
// queue order and while the key lock is still held — a racing new
// reservation cannot consume a just-released seat ahead of a
// longer-waiting entry.  A release that would exceed configured
// capacity halts the key and returns a CorruptionError.
func (s *Store) Release(key model.InventoryKey, count int, pool Pool, seats []model.SeatAssignment) error {
	if count <= 0 {
		return fmt.Errorf("release count must be positive, got %d", count)
	}
	b, err := s.bucket(key)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer func() { snap := b.snapshotLocked(); b.mu.Unlock(); s.emit(snap) }()

	if b.halted {
		return &CorruptionError{Key: key}
	}
	switch pool {
	case PoolConfirmed:
		if b.available+count > b.capacity {
			b.halted = true
			log.Printf("inventory: ALERT key=%s release of %d would exceed capacity %d (available %d); key halted",
				key, count, b.capacity, b.available)
			return &CorruptionError{Key: key}
		}
		b.available += count
		b.confirmed -= count
		b.coaches.release(seats)
	case PoolRAC:
		if b.racAvailable+count > b.racCapacity {
			b.halted = true
			log.Printf("inventory: ALERT key=%s RAC release of %d would exceed capacity %d (available %d); key halted",
				key, count, b.racCapacity, b.racAvailable)
			return &CorruptionError{Key: key}
		}
		b.racAvailable += count
		b.racHeld -= count
		b.racSlots.release(seats)
	default:
		return fmt.Errorf("unknown pool %d", pool)
	}
	if !b.frozen {
		b.promoteLocked(s.promote, pool, count)
	}
	return nil
}

// ChartPrep runs the final promotion sweep over whatever capacity is
// still free and then freezes the key: no further reservations or
// promotions are accepted.
func (s *Store) ChartPrep(key model.InventoryKey) error {
	b, err := s.bucket(key)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer func() { snap := b.snapshotLocked(); b.mu.Unlock(); s.emit(snap) }()

	if b.halted {
		return &CorruptionError{Key: key}
	}
	if b.frozen {
		return nil // idempotent
	}
	b.promoteLocked(s.promote, PoolConfirmed, b.available)
	b.promoteLocked(s.promote, PoolRAC, b.racAvailable)
	b.frozen = true
	return nil
}

// DecrementWaitlisted records that a live waitlist entry left the queue
// other than through promotion (cancellation or expiry).
func (s *Store) DecrementWaitlisted(key model.InventoryKey) {
	b, err := s.bucket(key)
	if err != nil {
		return
	}
	b.mu.Lock()
	if b.waitlisted > 0 {
		b.waitlisted--
	}
	snap := b.snapshotLocked()
	b.mu.Unlock()
	s.emit(snap)
}

// promoteLocked drains up to freed units through the promotion
// callback.  Caller holds b.mu.
func (b *bucket) promoteLocked(promote PromoteFunc, pool Pool, freed int) {
	if promote == nil {
		return
	}
	remaining := freed
	for remaining > 0 {
		used, expired := promote(b.key, pool, remaining, func(count int, prefs []model.BerthType) []model.SeatAssignment {
			if pool == PoolRAC {
				b.racAvailable -= count
				b.racHeld += count
				return b.racSlots.allocate(count)
			}
			b.available -= count
			b.confirmed += count
			return b.coaches.allocate(count, prefs)
		})
		// Entries expired during the scan left the queue without
		// taking a seat.
		if expired > b.waitlisted {
			expired = b.waitlisted
		}
		b.waitlisted -= expired
		if used <= 0 {
			return
		}
		if b.waitlisted >= 1 {
			b.waitlisted--
		}
		remaining -= used
	}
}
