// Package engine drives a booking request end-to-end: route validation,
// pricing, seat reservation or waitlisting, payment outcomes,
// cancellation with waitlist promotion, the pending-payment sweep and
// chart preparation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Hemanth509h/RailServe-sub000/internal/fare"
	"github.com/Hemanth509h/RailServe-sub000/internal/inventory"
	"github.com/Hemanth509h/RailServe-sub000/internal/model"
	"github.com/Hemanth509h/RailServe-sub000/internal/queue"
	"github.com/Hemanth509h/RailServe-sub000/internal/routegraph"
	"github.com/Hemanth509h/RailServe-sub000/internal/waitlist"
)

// MaxPassengersPerBooking caps the party size of a single PNR.
const MaxPassengersPerBooking = 6

// ErrNotFound is returned when no booking exists for a PNR.
var ErrNotFound = errors.New("booking not found")

// ErrAlreadyFinal is returned for transitions on a booking already in a
// terminal state.
var ErrAlreadyFinal = errors.New("booking already in a terminal state")

// ErrNoPaymentDue is returned for a payment outcome on a booking that
// has no pending payment.
var ErrNoPaymentDue = errors.New("no payment pending for booking")

// ErrNotWaitlisted is returned by WaitlistStatus for bookings that are
// not on a waitlist.
var ErrNotWaitlisted = errors.New("booking is not waitlisted")

// ErrBadRequest wraps request validation failures (missing passengers,
// unknown class or quota, malformed dates).
var ErrBadRequest = errors.New("invalid booking request")

// BookingRequest is the inbound journey request, produced by the
// booking UI / route layer.
type BookingRequest struct {
	TrainID       uint64            `json:"train_id"`
	JourneyDate   string            `json:"journey_date"` // 2006-01-02
	FromStationID uint64            `json:"from_station_id"`
	ToStationID   uint64            `json:"to_station_id"`
	Passengers    []model.Passenger `json:"passengers"`
	Class         model.CoachClass  `json:"class"`
	Quota         model.Quota       `json:"quota"`
}

// BookingResult is returned synchronously from CreateBooking.
type BookingResult struct {
	PNR              string                 `json:"pnr"`
	Status           model.BookingStatus    `json:"status"`
	Seats            []model.SeatAssignment `json:"seats,omitempty"`
	FareAmount       float64                `json:"fare_amount"`
	WaitlistPosition int                    `json:"waitlist_position,omitempty"`
	WaitlistType     model.WaitlistType     `json:"waitlist_type,omitempty"`
}

// PaymentOutcome is delivered by the external payment layer.
type PaymentOutcome struct {
	PNR     string `json:"pnr"`
	Success bool   `json:"success"`
}

// WaitlistStatus is the live queue position of a waitlisted booking.
type WaitlistStatus struct {
	Position int                `json:"position"`
	Type     model.WaitlistType `json:"waitlist_type"`
}

// Persistence writes booking, bucket and waitlist state to the backing
// store.  The engine's in-memory state is authoritative for admission
// decisions; these writes are snapshots and their errors are logged,
// never propagated into the booking flow.
type Persistence interface {
	SaveBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	SaveBucket(ctx context.Context, snap model.BucketSnapshot) error
	AppendWaitlist(ctx context.Context, e model.WaitlistEntrySnapshot) error
	UpdateWaitlistStatus(ctx context.Context, pnr, status string) error
}

// EventPublisher emits domain events to the message broker.  Failures
// are the publisher's problem; the engine fires and forgets.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event)
}

// Config carries the engine's tunables.
type Config struct {
	MaxWaitlist   int           // live entries per key; 0 disables the limit
	PaymentWindow time.Duration // PENDING_PAYMENT expiry window
	SweepInterval time.Duration // pending-payment sweep tick
}

// Engine is the booking state machine.  It is constructed once at
// process start with its collaborators injected and torn down at
// shutdown; there is no implicit singleton.
type Engine struct {
	routes  *routegraph.Registry
	fares   *fare.Calculator
	inv     *inventory.Store
	wl      *waitlist.Queue
	persist Persistence    // optional
	events  EventPublisher // optional
	cfg     Config
	clock   func() time.Time

	mu       sync.RWMutex
	bookings map[string]*model.Booking
}

// New wires the engine to its collaborators.  It installs itself as the
// inventory store's promotion callback, so every release immediately
// drains the waitlist under the key lock.
func New(routes *routegraph.Registry, fares *fare.Calculator, inv *inventory.Store, cfg Config) *Engine {
	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = 15 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	e := &Engine{
		routes:   routes,
		fares:    fares,
		inv:      inv,
		wl:       waitlist.New(cfg.MaxWaitlist),
		cfg:      cfg,
		clock:    func() time.Time { return time.Now().UTC() },
		bookings: make(map[string]*model.Booking),
	}
	inv.SetPromoter(e.promote)
	return e
}

// SetPersistence installs the backing-store writer.
func (e *Engine) SetPersistence(p Persistence) {
	e.persist = p
	e.inv.SetSnapshotHook(func(snap model.BucketSnapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.SaveBucket(ctx, snap); err != nil {
			log.Printf("engine: persist bucket %s: %v", snap.Key, err)
		}
	})
}

// SetEvents installs the broker publisher.
func (e *Engine) SetEvents(ev EventPublisher) { e.events = ev }

// SetClock overrides the time source; tests use it to control the
// payment window and journey-date expiry.
func (e *Engine) SetClock(clock func() time.Time) { e.clock = clock }

// CreateBooking runs the admission flow: validate the route, price the
// segment, reserve seats or fall through to the waitlist.  Route and
// pricing failures reject the request immediately and are never
// retried.  A request that merely loses the race for the last seat is
// not an error: it is waitlisted, the correct business outcome.
func (e *Engine) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	g, err := e.routes.Graph(req.TrainID)
	if err != nil {
		return nil, err
	}
	distance, err := g.Distance(req.FromStationID, req.ToStationID)
	if err != nil {
		return nil, err
	}
	amount, err := e.fares.Price(req.TrainID, distance, req.Class, req.Quota, req.JourneyDate)
	if err != nil {
		return nil, err
	}

	pnr, err := e.uniquePNR()
	if err != nil {
		return nil, fmt.Errorf("generate pnr: %w", err)
	}
	now := e.clock()
	key := model.InventoryKey{TrainID: req.TrainID, JourneyDate: req.JourneyDate, Class: req.Class, Quota: req.Quota}
	b := &model.Booking{
		PNR:             pnr,
		Key:             key,
		FromStationID:   req.FromStationID,
		ToStationID:     req.ToStationID,
		Passengers:      req.Passengers,
		Payment:         model.PaymentPending,
		DistanceKm:      distance,
		FareAmount:      amount,
		CreatedAt:       now,
		UpdatedAt:       now,
		PaymentDeadline: now.Add(e.cfg.PaymentWindow),
	}

	// The booking must be findable before its waitlist entry can be
	// promoted, so it goes into the map before the reservation attempt.
	e.mu.Lock()
	e.bookings[pnr] = b
	e.mu.Unlock()

	prefs := berthPrefs(req.Passengers)
	waitlistPos := 0
	res, err := e.inv.Reserve(key, len(req.Passengers), req.Quota, prefs, func() error {
		// Runs under the key lock: the capacity check and the enqueue
		// are one atomic step, so a racing release cannot slip between.
		pos, qerr := e.wl.Enqueue(key, pnr, model.WaitlistTypeFor(req.Quota), len(req.Passengers))
		if qerr != nil {
			return qerr
		}
		waitlistPos = pos
		e.mu.Lock()
		b.Status = model.StatusWaitlisted
		b.WaitlistType = model.WaitlistTypeFor(req.Quota)
		e.mu.Unlock()
		return nil
	})
	if err != nil {
		e.mu.Lock()
		delete(e.bookings, pnr)
		e.mu.Unlock()
		return nil, err
	}

	if res != nil {
		e.mu.Lock()
		b.Status = model.StatusConfirmed
		if res.Pool == inventory.PoolRAC {
			b.Status = model.StatusRAC
		}
		b.Seats = res.Seats
		e.mu.Unlock()
	}

	e.persistSave(ctx, pnr)
	if res != nil {
		e.publish(ctx, queue.EventBookingConfirmed, pnr)
	} else if e.persist != nil {
		err := e.persist.AppendWaitlist(ctx, model.WaitlistEntrySnapshot{
			Key: key, PNR: pnr, Type: model.WaitlistTypeFor(req.Quota),
			Passengers: len(req.Passengers), Status: string(waitlist.StatusWaiting), EnqueuedAt: now,
		})
		if err != nil {
			log.Printf("engine: persist waitlist entry %s: %v", pnr, err)
		}
	}

	return e.result(pnr, waitlistPos), nil
}

// GetBooking returns a copy of the booking for a PNR.
func (e *Engine) GetBooking(pnr string) (*model.Booking, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bookings[pnr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pnr)
	}
	cp := *b
	cp.Seats = append([]model.SeatAssignment(nil), b.Seats...)
	cp.Passengers = append([]model.Passenger(nil), b.Passengers...)
	return &cp, nil
}

// WaitlistStatus returns the live queue position of a waitlisted
// booking.  The position is recomputed on every call.
func (e *Engine) WaitlistStatus(pnr string) (*WaitlistStatus, error) {
	e.mu.RLock()
	b, ok := e.bookings[pnr]
	var key model.InventoryKey
	if ok {
		key = b.Key
	}
	status := model.BookingStatus("")
	if ok {
		status = b.Status
	}
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, pnr)
	}
	if status != model.StatusWaitlisted {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotWaitlisted, pnr, status)
	}
	pos, typ, live := e.wl.PositionOf(key, pnr)
	if !live {
		return nil, fmt.Errorf("%w: %s", ErrNotWaitlisted, pnr)
	}
	return &WaitlistStatus{Position: pos, Type: typ}, nil
}

// Cancel performs an explicit user/admin cancellation.  Confirmed and
// RAC bookings release their inventory, which drains the waitlist under
// the key lock; waitlisted bookings just flag their queue entry, which
// the next promotion scan skips.  A paid booking moves to
// REFUND_PENDING instead of CANCELLED (the refund itself is external).
func (e *Engine) Cancel(ctx context.Context, pnr string) error {
	return e.teardown(ctx, pnr, "cancelled by user")
}

// HandlePayment applies an external payment outcome to a booking in
// PENDING_PAYMENT.  Success finalises the booking; failure rolls the
// reservation back through the same path as cancellation.
func (e *Engine) HandlePayment(ctx context.Context, out PaymentOutcome) error {
	e.mu.Lock()
	b, ok := e.bookings[out.PNR]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, out.PNR)
	}
	if b.Status.Terminal() || b.Payment != model.PaymentPending {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoPaymentDue, out.PNR)
	}
	if out.Success {
		b.Payment = model.PaymentPaid
		b.UpdatedAt = e.clock()
		e.mu.Unlock()
		e.persistUpdate(ctx, out.PNR)
		return nil
	}
	b.Payment = model.PaymentFailed
	e.mu.Unlock()
	return e.teardown(ctx, out.PNR, "payment failed")
}

// ExpirePendingPayments sweeps allocated bookings whose payment window
// has elapsed, expiring each through the same inventory release path as
// an explicit cancellation.  Only CONFIRMED and RAC bookings hold a
// payment obligation; a WAITLISTED booking has no seat and no deadline
// to miss — it stays queued until it is promoted, cancelled, or its
// journey date passes.  Returns the number of bookings expired.
func (e *Engine) ExpirePendingPayments(ctx context.Context) int {
	now := e.clock()
	e.mu.RLock()
	var due []string
	for pnr, b := range e.bookings {
		if b.Status != model.StatusConfirmed && b.Status != model.StatusRAC {
			continue
		}
		if b.Payment == model.PaymentPending && now.After(b.PaymentDeadline) {
			due = append(due, pnr)
		}
	}
	e.mu.RUnlock()
	expired := 0
	for _, pnr := range due {
		if err := e.teardown(ctx, pnr, "payment timeout"); err != nil {
			log.Printf("engine: expire %s: %v", pnr, err)
			continue
		}
		expired++
	}
	return expired
}

// Run drives the pending-payment sweep until the context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := e.ExpirePendingPayments(ctx); n > 0 {
				log.Printf("engine: expired %d pending-payment bookings", n)
			}
		}
	}
}

// ChartPrep runs the final promotion sweep for every key of the train
// and journey date, then freezes the keys against further changes.
// Returns the number of keys swept.
func (e *Engine) ChartPrep(ctx context.Context, trainID uint64, journeyDate string) (int, error) {
	keys := e.inv.Keys(trainID, journeyDate)
	for _, key := range keys {
		if err := e.inv.ChartPrep(key); err != nil {
			return 0, fmt.Errorf("chart prep %s: %w", key, err)
		}
	}
	log.Printf("engine: chart prepared train=%d date=%s keys=%d", trainID, journeyDate, len(keys))
	return len(keys), nil
}

// teardown is the shared cancellation path for explicit cancellation,
// payment failure and payment timeout.
func (e *Engine) teardown(ctx context.Context, pnr, reason string) error {
	e.mu.Lock()
	b, ok := e.bookings[pnr]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, pnr)
	}
	if b.Status.Terminal() {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrAlreadyFinal, pnr, b.Status)
	}
	prior := b.Status
	pool := inventory.PoolConfirmed
	if prior == model.StatusRAC {
		pool = inventory.PoolRAC
	}
	seats := b.Seats
	count := b.SeatCount()
	key := b.Key

	switch {
	case prior != model.StatusWaitlisted && b.Payment == model.PaymentPaid:
		b.Status = model.StatusRefundPending
	default:
		b.Status = model.StatusCancelled
	}
	b.CancelReason = reason
	b.UpdatedAt = e.clock()
	e.mu.Unlock()

	if prior == model.StatusWaitlisted {
		e.wl.MarkCancelled(key, pnr)
		e.inv.DecrementWaitlisted(key)
		if e.persist != nil {
			if err := e.persist.UpdateWaitlistStatus(ctx, pnr, string(waitlist.StatusCancelled)); err != nil {
				log.Printf("engine: persist waitlist status %s: %v", pnr, err)
			}
		}
	} else if prior == model.StatusConfirmed || prior == model.StatusRAC {
		if err := e.inv.Release(key, count, pool, seats); err != nil {
			// Corruption on release is operator-facing; the booking
			// itself is already torn down.
			log.Printf("engine: release for %s: %v", pnr, err)
			var corr *inventory.CorruptionError
			if errors.As(err, &corr) {
				return err
			}
		}
	}

	e.persistUpdate(ctx, pnr)
	e.publish(ctx, queue.EventBookingCancelled, pnr)
	return nil
}

// promote is the inventory store's promotion callback.  It runs while
// the key lock is held, so it must stay short and free of blocking
// I/O: persistence and events for the promoted booking are handed off
// to a goroutine.
func (e *Engine) promote(key model.InventoryKey, pool inventory.Pool, remaining int, alloc inventory.AllocFunc) (used, expired int) {
	today := e.clock().Format("2006-01-02")
	entry := e.wl.PopEligible(key, today, remaining, func(pnr string) {
		expired++
		e.expireWaitlisted(pnr)
	})
	if entry == nil {
		return 0, expired
	}
	e.mu.Lock()
	b, ok := e.bookings[entry.PNR]
	var prefs []model.BerthType
	if ok {
		prefs = berthPrefs(b.Passengers)
	}
	seats := alloc(entry.Passengers, prefs)
	if ok {
		b.Status = model.StatusConfirmed
		if pool == inventory.PoolRAC {
			b.Status = model.StatusRAC
		}
		b.Seats = seats
		b.UpdatedAt = e.clock()
		// The admission-time deadline may be long gone by the time a
		// seat frees up; promotion starts the payment window over.
		if b.Payment == model.PaymentPending {
			b.PaymentDeadline = e.clock().Add(e.cfg.PaymentWindow)
		}
	}
	e.mu.Unlock()

	go func(pnr string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if e.persist != nil {
			if err := e.persist.UpdateWaitlistStatus(ctx, pnr, string(waitlist.StatusPromoted)); err != nil {
				log.Printf("engine: persist waitlist status %s: %v", pnr, err)
			}
		}
		e.persistUpdate(ctx, pnr)
		e.publish(ctx, queue.EventWaitlistPromoted, pnr)
	}(entry.PNR)

	return entry.Passengers, expired
}

// expireWaitlisted marks a booking EXPIRED after its queue entry aged
// past the journey date.  Called from inside the promotion scan.
func (e *Engine) expireWaitlisted(pnr string) {
	e.mu.Lock()
	if b, ok := e.bookings[pnr]; ok && !b.Status.Terminal() {
		b.Status = model.StatusExpired
		b.CancelReason = "journey date passed"
		b.UpdatedAt = e.clock()
	}
	e.mu.Unlock()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if e.persist != nil {
			if err := e.persist.UpdateWaitlistStatus(ctx, pnr, string(waitlist.StatusExpired)); err != nil {
				log.Printf("engine: persist waitlist status %s: %v", pnr, err)
			}
		}
		e.persistUpdate(ctx, pnr)
	}()
}

func (e *Engine) uniquePNR() (string, error) {
	for {
		pnr, err := newPNR()
		if err != nil {
			return "", err
		}
		e.mu.RLock()
		_, taken := e.bookings[pnr]
		e.mu.RUnlock()
		if !taken {
			return pnr, nil
		}
	}
}

func (e *Engine) result(pnr string, waitlistPos int) *BookingResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b := e.bookings[pnr]
	return &BookingResult{
		PNR:              b.PNR,
		Status:           b.Status,
		Seats:            append([]model.SeatAssignment(nil), b.Seats...),
		FareAmount:       b.FareAmount,
		WaitlistPosition: waitlistPos,
		WaitlistType:     b.WaitlistType,
	}
}

func (e *Engine) persistSave(ctx context.Context, pnr string) {
	if e.persist == nil {
		return
	}
	b, err := e.GetBooking(pnr)
	if err != nil {
		return
	}
	if err := e.persist.SaveBooking(ctx, b); err != nil {
		log.Printf("engine: persist booking %s: %v", pnr, err)
	}
}

func (e *Engine) persistUpdate(ctx context.Context, pnr string) {
	if e.persist == nil {
		return
	}
	b, err := e.GetBooking(pnr)
	if err != nil {
		return
	}
	if err := e.persist.UpdateBooking(ctx, b); err != nil {
		log.Printf("engine: persist booking %s: %v", pnr, err)
	}
}

func (e *Engine) publish(ctx context.Context, typ string, pnr string) {
	if e.events == nil {
		return
	}
	b, err := e.GetBooking(pnr)
	if err != nil {
		return
	}
	e.events.Publish(ctx, queue.Event{
		Type:       typ,
		PNR:        b.PNR,
		Key:        b.Key.String(),
		Status:     string(b.Status),
		Seats:      b.Seats,
		FareAmount: b.FareAmount,
		Reason:     b.CancelReason,
		OccurredAt: e.clock().Format(time.RFC3339),
	})
}

func validateRequest(req BookingRequest) error {
	if req.TrainID == 0 {
		return fmt.Errorf("%w: train_id is required", ErrBadRequest)
	}
	if _, err := time.Parse("2006-01-02", req.JourneyDate); err != nil {
		return fmt.Errorf("%w: journey_date must be YYYY-MM-DD", ErrBadRequest)
	}
	if len(req.Passengers) == 0 {
		return fmt.Errorf("%w: at least one passenger is required", ErrBadRequest)
	}
	if len(req.Passengers) > MaxPassengersPerBooking {
		return fmt.Errorf("%w: at most %d passengers per booking", ErrBadRequest, MaxPassengersPerBooking)
	}
	for i, p := range req.Passengers {
		if p.Name == "" {
			return fmt.Errorf("%w: passenger %d has no name", ErrBadRequest, i+1)
		}
		if p.BerthPreference != "" && !p.BerthPreference.Valid() {
			return fmt.Errorf("%w: passenger %d has unknown berth preference %q", ErrBadRequest, i+1, p.BerthPreference)
		}
	}
	if !req.Class.Valid() {
		return fmt.Errorf("%w: unknown coach class %q", ErrBadRequest, req.Class)
	}
	if !req.Quota.Valid() {
		return fmt.Errorf("%w: unknown quota %q", ErrBadRequest, req.Quota)
	}
	return nil
}

func berthPrefs(passengers []model.Passenger) []model.BerthType {
	prefs := make([]model.BerthType, len(passengers))
	for i, p := range passengers {
		prefs[i] = p.BerthPreference
	}
	return prefs
}
