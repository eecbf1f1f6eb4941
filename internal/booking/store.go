package booking

import (
	"context"

	"github.com/moviehall/ticket-booking/internal/model"
)

// Store is the transactional store the reservation service runs
// against.  The service never touches seat state outside of a Tx.
type Store interface {
	// Begin opens a unit of work.  Everything performed on the
	// returned Tx commits together or not at all.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single unit of work.  Implementations must guarantee that
// ClaimSeat is an atomic compare-and-set: for any one seat, concurrent
// claims are totally ordered and only the first to observe AVAILABLE
// succeeds.  Callers must finish a Tx with exactly one of Commit or
// Rollback.
type Tx interface {
	// ShowExists reports whether the show is present in the catalog.
	ShowExists(ctx context.Context, showID uint64) (bool, error)

	// InsertBooking persists a new booking row and populates its
	// generated ID and creation timestamp.  The booking carries no
	// seats at this point.
	InsertBooking(ctx context.Context, b *model.Booking) error

	// ClaimSeat transitions one seat from AVAILABLE to BOOKED and
	// attaches it to the booking, only if the seat currently is
	// AVAILABLE and belongs to the show.  It reports false when the
	// condition did not hold; a false return carries no error and
	// must leave the seat untouched.
	ClaimSeat(ctx context.Context, showID, seatID, bookingID uint64) (bool, error)

	// ClaimedSeats returns the seats attached to the booking inside
	// this unit of work, ordered by row and number.
	ClaimedSeats(ctx context.Context, bookingID uint64) ([]model.Seat, error)

	// SetBookingTotal records the summed seat price on the booking.
	SetBookingTotal(ctx context.Context, bookingID uint64, totalCents uint32) error

	Commit() error
	Rollback() error
}
