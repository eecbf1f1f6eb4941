package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/moviehall/ticket-booking/internal/model"
)

// Service reserves seats.  It owns no state of its own; all contended
// state lives behind the Store, and correctness rests entirely on the
// store's per-seat conditional transition.  Many requests may call
// Reserve concurrently without any in-process coordination.
type Service struct {
	store Store
}

// NewService constructs a Service bound to the given store.
func NewService(store Store) *Service {
	if store == nil {
		panic("nil store passed to NewService")
	}
	return &Service{store: store}
}

// Reserve atomically books the requested seats for the user and
// returns the resulting booking, or fails entirely with no observable
// state change.  The returned booking's seat set equals exactly the
// (deduplicated) requested set and its total equals the sum of the
// seats' prices at reservation time.
//
// Errors are one of ErrInvalidRequest, ErrSeatConflict and
// ErrStoreUnavailable; see their documentation for retry semantics.
// Reserve never retries internally.
func (s *Service) Reserve(ctx context.Context, showID uint64, seatIDs []uint64, userID uint64) (*model.Booking, error) {
	seatIDs = dedupe(seatIDs)
	if showID == 0 || userID == 0 || len(seatIDs) == 0 {
		return nil, ErrInvalidRequest
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	exists, err := tx.ShowExists(ctx, showID)
	if err != nil {
		return nil, storeErr("show lookup", err)
	}
	if !exists {
		return nil, ErrInvalidRequest
	}

	b := &model.Booking{
		Reference: uuid.NewString(),
		UserID:    userID,
		ShowID:    showID,
		Status:    model.BookingConfirmed,
	}
	if err := tx.InsertBooking(ctx, b); err != nil {
		return nil, storeErr("create booking", err)
	}

	// The linchpin: one conditional transition per seat.  Any seat
	// that is not AVAILABLE aborts the entire unit of work, so a
	// request that loses on a single seat retains nothing.
	for _, seatID := range seatIDs {
		ok, err := tx.ClaimSeat(ctx, showID, seatID, b.ID)
		if err != nil {
			return nil, storeErr("claim seat", err)
		}
		if !ok {
			return nil, ErrSeatConflict
		}
	}

	seats, err := tx.ClaimedSeats(ctx, b.ID)
	if err != nil {
		return nil, storeErr("load claimed seats", err)
	}
	var total uint32
	for _, seat := range seats {
		total += seat.PriceCents
	}
	if err := tx.SetBookingTotal(ctx, b.ID, total); err != nil {
		return nil, storeErr("set total", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit", err)
	}
	committed = true

	b.TotalAmountCents = total
	b.Seats = seats
	return b, nil
}

// storeErr tags an infrastructure failure with ErrStoreUnavailable so
// callers can match it with errors.Is while keeping the cause.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// dedupe drops zero and repeated seat ids while preserving order.
func dedupe(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
