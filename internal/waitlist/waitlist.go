// Package waitlist keeps one FIFO queue of pending bookings per
// inventory key.  Ordering is strictly by a process-wide insertion
// sequence number; timestamps are recorded for display only, so clock
// skew can never reorder entries.
package waitlist

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Hemanth509h/RailServe-sub000/internal/model"
)

// ErrFull is returned by Enqueue when the configured maximum waitlist
// length for a key has been reached.
var ErrFull = errors.New("waitlist full")

// EntryStatus tracks an entry through the queue.  CANCELLED entries are
// skipped lazily at promotion time rather than removed eagerly, so the
// cancellation path never takes the inventory key lock.
type EntryStatus string

const (
	StatusWaiting   EntryStatus = "WAITING"
	StatusPromoted  EntryStatus = "PROMOTED"
	StatusCancelled EntryStatus = "CANCELLED"
	StatusExpired   EntryStatus = "EXPIRED"
)

// Entry is one pending booking in a queue.
type Entry struct {
	PNR        string
	Seq        uint64
	Type       model.WaitlistType
	Passengers int
	Status     EntryStatus
	EnqueuedAt time.Time
}

// Queue owns every per-key waitlist.  A single mutex guards the queue
// maps; the critical sections are tiny (append, scan, pop) and the
// inventory key lock already serialises all promotion traffic per key.
type Queue struct {
	mu      sync.Mutex
	seq     uint64
	maxLen  int
	entries map[model.InventoryKey][]*Entry
}

// New returns a queue enforcing maxLen live entries per key.  A maxLen
// of zero or below disables the limit.
func New(maxLen int) *Queue {
	return &Queue{maxLen: maxLen, entries: make(map[model.InventoryKey][]*Entry)}
}

// Enqueue appends a booking to the key's queue and returns its 1-based
// position, which is the live length since the new entry sits at the
// tail.  Fails with ErrFull at the configured maximum.
func (q *Queue) Enqueue(key model.InventoryKey, pnr string, typ model.WaitlistType, passengers int) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	live := q.liveLenLocked(key)
	if q.maxLen > 0 && live >= q.maxLen {
		return 0, fmt.Errorf("%w: key %s at limit %d", ErrFull, key, q.maxLen)
	}
	q.seq++
	e := &Entry{
		PNR:        pnr,
		Seq:        q.seq,
		Type:       typ,
		Passengers: passengers,
		Status:     StatusWaiting,
		EnqueuedAt: time.Now().UTC(),
	}
	q.entries[key] = append(q.entries[key], e)
	return live + 1, nil
}

// PositionOf recomputes the 1-based live position of a booking.  The
// position is never stored: earlier entries may have been promoted or
// cancelled, so a stored value would go stale.  ok is false when the
// booking has no waiting entry on the key.
func (q *Queue) PositionOf(key model.InventoryKey, pnr string) (pos int, typ model.WaitlistType, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, e := range q.entries[key] {
		if e.Status != StatusWaiting {
			continue
		}
		n++
		if e.PNR == pnr {
			return n, e.Type, true
		}
	}
	return 0, "", false
}

// MarkCancelled flags a waiting entry as cancelled.  The entry stays in
// place and is skipped on the next promotion scan.
func (q *Queue) MarkCancelled(key model.InventoryKey, pnr string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries[key] {
		if e.PNR == pnr && e.Status == StatusWaiting {
			e.Status = StatusCancelled
			return true
		}
	}
	return false
}

// PopEligible pops the next promotable entry from the head of the
// key's queue.  Cancelled heads are dropped silently; heads whose
// journey date has passed (the key's date is before today) are marked
// EXPIRED and reported through onExpired.  The first waiting head is
// returned only if its passenger count fits within need — a party too
// large for the freed capacity blocks the queue, preserving strict
// FIFO.  Returns nil when nothing is promotable.
func (q *Queue) PopEligible(key model.InventoryKey, today string, need int, onExpired func(pnr string)) *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := q.entries[key]
	for len(list) > 0 {
		head := list[0]
		switch {
		case head.Status == StatusCancelled, head.Status == StatusExpired, head.Status == StatusPromoted:
			list = list[1:]
			continue
		case key.JourneyDate < today:
			head.Status = StatusExpired
			list = list[1:]
			if onExpired != nil {
				onExpired(head.PNR)
			}
			continue
		case head.Passengers > need:
			q.entries[key] = list
			return nil
		default:
			head.Status = StatusPromoted
			q.entries[key] = list[1:]
			return head
		}
	}
	q.entries[key] = list
	return nil
}

// Len returns the live (waiting) length of the key's queue.
func (q *Queue) Len(key model.InventoryKey) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.liveLenLocked(key)
}

func (q *Queue) liveLenLocked(key model.InventoryKey) int {
	n := 0
	for _, e := range q.entries[key] {
		if e.Status == StatusWaiting {
			n++
		}
	}
	return n
}
