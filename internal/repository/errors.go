// Package repository persists bookings, inventory buckets, waitlist
// entries and reference data in MySQL.  The in-memory engine is the
// authority for admission decisions; these rows are durable snapshots
// plus the reference data loaded at bootstrap.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Handlers
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with existing state,
// such as reusing a PNR.  Handlers translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
