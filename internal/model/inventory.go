package model

import "fmt"

// InventoryKey shards all concurrency-sensitive booking state.  Every
// seat bucket, waitlist queue and per-key lock is scoped to one key.
// JourneyDate is normalised to "2006-01-02" so the struct stays usable
// as a map key (time.Time carries a location pointer and is not).
type InventoryKey struct {
	TrainID     uint64     // trains.id
	JourneyDate string     // journey date, formatted 2006-01-02
	Class       CoachClass // coach class code
	Quota       Quota      // allocation quota code
}

// String renders the key in the compact form used for log lines and
// Redis/broker routing, e.g. "12951/2026-08-30/3A/GN".
func (k InventoryKey) String() string {
	return fmt.Sprintf("%d/%s/%s/%s", k.TrainID, k.JourneyDate, k.Class, k.Quota)
}

// BucketSnapshot is the persisted view of one inventory bucket.  The
// live counters are owned by the in-memory inventory store; rows of
// this shape are written after each mutation so the backing store can
// answer availability queries and survive restarts.
type BucketSnapshot struct {
	Key          InventoryKey
	Capacity     int // configured confirm capacity
	Available    int // seats free for confirmation
	RACCapacity  int // configured RAC (shared berth) capacity
	RACAvailable int // RAC slots free
	Confirmed    int // seats currently held by confirmed allocations
	RAC          int // slots currently held by RAC allocations
	Waitlisted   int // live waitlist length for the key
	Frozen       bool
	Halted       bool
}
