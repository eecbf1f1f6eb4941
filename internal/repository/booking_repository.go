package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// BookingRepo provides the read path for bookings.  Bookings are
// append-only from this repository's perspective: rows are created by
// the reservation service inside its own transaction and never
// updated here.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookedSeat is one seat claimed by a booking, as shown on receipts.
type BookedSeat struct {
	SeatID     uint64 `json:"seat_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	PriceCents uint32 `json:"price_cents"`
}

// BookingDetail is a booking together with its show summary and the
// seats it claimed.  It is returned to customers for receipt display.
type BookingDetail struct {
	ID               uint64       `json:"id"`
	Reference        string       `json:"reference"`
	UserID           uint64       `json:"user_id"`
	ShowID           uint64       `json:"show_id"`
	Status           string       `json:"status"`
	TotalAmountCents uint32       `json:"total_amount_cents"`
	ShowTitle        string       `json:"show_title"`
	ShowStartsAt     string       `json:"show_starts_at"`
	CreatedAt        string       `json:"created_at"`
	Seats            []BookedSeat `json:"seats"`
}

// GetByID returns a single booking with its seats.  It returns
// ErrBookingNotFound when no booking with the given ID exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.user_id, b.show_id, b.status, b.total_amount_cents,
	                  s.title, s.starts_at, b.created_at
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           WHERE b.id = ?`
	var det BookingDetail
	var startsAt, createdAt time.Time
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.Reference, &det.UserID, &det.ShowID, &det.Status, &det.TotalAmountCents,
		&det.ShowTitle, &startsAt, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	det.ShowStartsAt = startsAt.UTC().Format(time.RFC3339)
	det.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	seats, err := r.seatsByBooking(ctx, []uint64{det.ID})
	if err != nil {
		return nil, err
	}
	det.Seats = seats[det.ID]
	if det.Seats == nil {
		det.Seats = []BookedSeat{}
	}
	return &det, nil
}

// ListByUser returns all bookings of a user, newest first, each with
// its show summary and claimed seats.  When the user has no bookings
// an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.user_id, b.show_id, b.status, b.total_amount_cents,
	                  s.title, s.starts_at, b.created_at
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d BookingDetail
		var startsAt, createdAt time.Time
		if err := rows.Scan(
			&d.ID, &d.Reference, &d.UserID, &d.ShowID, &d.Status, &d.TotalAmountCents,
			&d.ShowTitle, &startsAt, &createdAt,
		); err != nil {
			return nil, err
		}
		d.ShowStartsAt = startsAt.UTC().Format(time.RFC3339)
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		d.Seats = []BookedSeat{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	// Populate seats for all bookings in a single query.
	ids := make([]uint64, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	seats, err := r.seatsByBooking(ctx, ids)
	if err != nil {
		return nil, err
	}
	for bookingID, bs := range seats {
		if idx, ok := index[bookingID]; ok {
			details[idx].Seats = bs
		}
	}
	return details, nil
}

// seatsByBooking loads the claimed seats for a set of bookings keyed
// by booking id, ordered by row label then seat number.
func (r *BookingRepo) seatsByBooking(ctx context.Context, bookingIDs []uint64) (map[uint64][]BookedSeat, error) {
	if len(bookingIDs) == 0 {
		return map[uint64][]BookedSeat{}, nil
	}
	placeholders := make([]string, 0, len(bookingIDs))
	args := make([]interface{}, 0, len(bookingIDs))
	for _, id := range bookingIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	query := `SELECT booking_id, id, row_label, seat_number, price_cents
	          FROM seats
	          WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY booking_id, row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]BookedSeat)
	for rows.Next() {
		var bookingID uint64
		var bs BookedSeat
		if err := rows.Scan(&bookingID, &bs.SeatID, &bs.RowLabel, &bs.SeatNumber, &bs.PriceCents); err != nil {
			return nil, err
		}
		out[bookingID] = append(out[bookingID], bs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
