package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehall/ticket-booking/internal/model"
)

// memStore is an in-memory implementation of Store used to exercise
// the reservation protocol, including its concurrency properties.
// A transaction holds the store mutex from Begin until Commit or
// Rollback, which yields serializable units of work and therefore the
// per-seat linearizability the Tx contract demands.
type memStore struct {
	mu          sync.Mutex
	shows       map[uint64]bool
	seats       map[uint64]*memSeat
	bookings    map[uint64]model.Booking
	totals      map[uint64]uint32
	nextBooking uint64
}

type memSeat struct {
	showID     uint64
	rowLabel   string
	seatNumber uint32
	priceCents uint32
	status     string
	bookingID  uint64
}

func newMemStore() *memStore {
	return &memStore{
		shows:    make(map[uint64]bool),
		seats:    make(map[uint64]*memSeat),
		bookings: make(map[uint64]model.Booking),
		totals:   make(map[uint64]uint32),
	}
}

// addShow seeds a show with n seats priced uniformly, returning the
// seat ids in row order.  Seat ids are globally sequential.
func (s *memStore) addShow(showID uint64, n int, priceCents uint32) []uint64 {
	s.shows[showID] = true
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		id := uint64(len(s.seats) + 1)
		s.seats[id] = &memSeat{
			showID:     showID,
			rowLabel:   "A",
			seatNumber: uint32(i + 1),
			priceCents: priceCents,
			status:     model.SeatAvailable,
		}
		ids = append(ids, id)
	}
	return ids
}

// statuses snapshots seat id -> status for before/after comparisons.
func (s *memStore) statuses() map[uint64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint64]string, len(s.seats))
	for id, seat := range s.seats {
		out[id] = seat.status
	}
	return out
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memTx{store: s}, nil
}

type memTx struct {
	store    *memStore
	claimed  []uint64 // seat ids to unwind on rollback
	inserted []uint64 // booking ids to unwind on rollback
	done     bool
}

func (t *memTx) ShowExists(ctx context.Context, showID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return t.store.shows[showID], nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.nextBooking++
	b.ID = t.store.nextBooking
	b.CreatedAt = time.Now().UTC()
	t.store.bookings[b.ID] = *b
	t.inserted = append(t.inserted, b.ID)
	return nil
}

func (t *memTx) ClaimSeat(ctx context.Context, showID, seatID, bookingID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	seat, ok := t.store.seats[seatID]
	if !ok || seat.showID != showID || seat.status != model.SeatAvailable {
		return false, nil
	}
	seat.status = model.SeatBooked
	seat.bookingID = bookingID
	t.claimed = append(t.claimed, seatID)
	return true, nil
}

func (t *memTx) ClaimedSeats(ctx context.Context, bookingID uint64) ([]model.Seat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var seats []model.Seat
	for id, seat := range t.store.seats {
		if seat.status == model.SeatBooked && seat.bookingID == bookingID {
			bid := bookingID
			seats = append(seats, model.Seat{
				ID:         id,
				ShowID:     seat.showID,
				RowLabel:   seat.rowLabel,
				SeatNumber: seat.seatNumber,
				PriceCents: seat.priceCents,
				Status:     seat.status,
				BookingID:  &bid,
			})
		}
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].RowLabel != seats[j].RowLabel {
			return seats[i].RowLabel < seats[j].RowLabel
		}
		return seats[i].SeatNumber < seats[j].SeatNumber
	})
	return seats, nil
}

func (t *memTx) SetBookingTotal(ctx context.Context, bookingID uint64, totalCents uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.totals[bookingID] = totalCents
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	for _, seatID := range t.claimed {
		seat := t.store.seats[seatID]
		seat.status = model.SeatAvailable
		seat.bookingID = 0
	}
	for _, bookingID := range t.inserted {
		delete(t.store.bookings, bookingID)
		delete(t.store.totals, bookingID)
	}
	t.store.mu.Unlock()
	return nil
}

// failingStore simulates an unreachable database.
type failingStore struct{}

func (failingStore) Begin(context.Context) (Tx, error) {
	return nil, errors.New("connection refused")
}

func seatIDSet(seats []model.Seat) map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(seats))
	for _, s := range seats {
		out[s.ID] = struct{}{}
	}
	return out
}

func TestReserveBooksRequestedSeats(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 10, 1500)
	svc := NewService(store)

	b, err := svc.Reserve(context.Background(), 1, ids[:2], 7)
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, uint64(7), b.UserID)
	assert.Equal(t, uint64(1), b.ShowID)
	assert.NotEmpty(t, b.Reference)
	require.Len(t, b.Seats, 2)
	assert.Equal(t, map[uint64]struct{}{ids[0]: {}, ids[1]: {}}, seatIDSet(b.Seats))
	assert.Equal(t, uint32(3000), b.TotalAmountCents)

	after := store.statuses()
	assert.Equal(t, model.SeatBooked, after[ids[0]])
	assert.Equal(t, model.SeatBooked, after[ids[1]])
	assert.Equal(t, model.SeatAvailable, after[ids[2]])
}

func TestReserveOverlapWithExistingBooking(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 10, 1500)
	svc := NewService(store)

	_, err := svc.Reserve(context.Background(), 1, []uint64{ids[0], ids[1]}, 1)
	require.NoError(t, err)

	// ids[1] is taken, ids[2] is free; the request must lose entirely.
	before := store.statuses()
	_, err = svc.Reserve(context.Background(), 1, []uint64{ids[1], ids[2]}, 2)
	require.ErrorIs(t, err, ErrSeatConflict)

	assert.Equal(t, before, store.statuses(), "failed reserve must not change any seat")
	assert.Equal(t, model.SeatAvailable, store.statuses()[ids[2]])
	assert.Equal(t, 1, store.bookingCount(), "no orphan booking after a conflict")
}

func TestReserveInvalidRequests(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 4, 1000)
	svc := NewService(store)

	cases := []struct {
		name    string
		showID  uint64
		seatIDs []uint64
		userID  uint64
	}{
		{"empty seat set", 1, nil, 1},
		{"only zero seat ids", 1, []uint64{0, 0}, 1},
		{"unknown show", 99, ids[:1], 1},
		{"zero user", 1, ids[:1], 0},
		{"zero show", 0, ids[:1], 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Reserve(context.Background(), tc.showID, tc.seatIDs, tc.userID)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Equal(t, 0, store.bookingCount())
}

func TestReserveUnknownSeatReadsAsConflict(t *testing.T) {
	store := newMemStore()
	store.addShow(1, 4, 1000)
	otherIDs := store.addShow(2, 4, 1000)
	svc := NewService(store)

	// A seat id that does not exist at all.
	_, err := svc.Reserve(context.Background(), 1, []uint64{9999}, 1)
	assert.ErrorIs(t, err, ErrSeatConflict)

	// A seat id that belongs to a different show.
	_, err = svc.Reserve(context.Background(), 1, []uint64{otherIDs[0]}, 1)
	assert.ErrorIs(t, err, ErrSeatConflict)

	// The foreign seat must be untouched.
	assert.Equal(t, model.SeatAvailable, store.statuses()[otherIDs[0]])
}

func TestReserveDeduplicatesSeatIDs(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 4, 1000)
	svc := NewService(store)

	b, err := svc.Reserve(context.Background(), 1, []uint64{ids[0], ids[0], ids[1], 0}, 1)
	require.NoError(t, err)
	assert.Len(t, b.Seats, 2)
	assert.Equal(t, uint32(2000), b.TotalAmountCents)
}

func TestReserveTotalSumsSeatPrices(t *testing.T) {
	store := newMemStore()
	store.shows[1] = true
	// Mixed pricing, like a standard/premium split.
	prices := []uint32{1500, 1500, 2250}
	var ids []uint64
	for i, p := range prices {
		id := uint64(i + 1)
		store.seats[id] = &memSeat{showID: 1, rowLabel: "A", seatNumber: uint32(i + 1), priceCents: p, status: model.SeatAvailable}
		ids = append(ids, id)
	}
	svc := NewService(store)

	b, err := svc.Reserve(context.Background(), 1, ids, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(5250), b.TotalAmountCents)
}

func TestConcurrentDisjointSetsBothSucceed(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 10, 1000)
	svc := NewService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Reserve(context.Background(), 1, []uint64{ids[0], ids[1]}, 1)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Reserve(context.Background(), 1, []uint64{ids[2], ids[3]}, 2)
	}()
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestConcurrentOverlapExactlyOneWins(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 10, 1000)
	svc := NewService(store)

	var wg sync.WaitGroup
	results := make([]struct {
		b   *model.Booking
		err error
	}, 2)
	sets := [][]uint64{{ids[0], ids[1]}, {ids[1], ids[2]}}
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			results[i].b, results[i].err = svc.Reserve(context.Background(), 1, sets[i], uint64(i+1))
		}(i)
	}
	wg.Wait()

	var winners, losers int
	var winnerSeats map[uint64]struct{}
	for _, r := range results {
		if r.err == nil {
			winners++
			winnerSeats = seatIDSet(r.b.Seats)
		} else {
			losers++
			assert.ErrorIs(t, r.err, ErrSeatConflict)
		}
	}
	require.Equal(t, 1, winners, "exactly one overlapping request must win")
	require.Equal(t, 1, losers)

	// Only the winner's seats are booked; the loser retained nothing.
	statuses := store.statuses()
	for id, st := range statuses {
		if _, ok := winnerSeats[id]; ok {
			assert.Equal(t, model.SeatBooked, st)
		} else {
			assert.Equal(t, model.SeatAvailable, st, "seat %d", id)
		}
	}
	assert.Equal(t, 1, store.bookingCount())
}

func TestHundredCallersSameSeat(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 1, 1000)
	svc := NewService(store)

	const callers = 100
	var wg sync.WaitGroup
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), 1, []uint64{ids[0]}, uint64(i+1))
		}(i)
	}
	wg.Wait()

	var success, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrSeatConflict):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, callers-1, conflict)
	assert.Equal(t, 1, store.bookingCount())
}

func TestCancelledContextAbortsWithNoEffect(t *testing.T) {
	store := newMemStore()
	ids := store.addShow(1, 4, 1000)
	svc := NewService(store)

	before := store.statuses()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Reserve(ctx, 1, ids[:2], 1)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, before, store.statuses())
	assert.Equal(t, 0, store.bookingCount())
}

func TestStoreFailureIsStoreUnavailable(t *testing.T) {
	svc := NewService(failingStore{})
	_, err := svc.Reserve(context.Background(), 1, []uint64{1}, 1)
	require.ErrorIs(t, err, ErrStoreUnavailable)
	// The cause stays visible for logs.
	assert.Contains(t, fmt.Sprint(err), "connection refused")
}
