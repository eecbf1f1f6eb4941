package repository

import (
	"context"
	"database/sql"

	"github.com/moviehall/ticket-booking/internal/booking"
	"github.com/moviehall/ticket-booking/internal/model"
)

// SQLStore implements booking.Store on top of MySQL.  Each unit of
// work is a database transaction; the per-seat conditional transition
// is a single UPDATE guarded by the seat's current status, never a
// read followed by a blind write, so the database's isolation decides
// the winner under contention.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a SQLStore bound to the given database.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

var _ booking.Store = (*SQLStore)(nil)

// Begin opens a database transaction wrapped as a booking.Tx.
func (s *SQLStore) Begin(ctx context.Context) (booking.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) ShowExists(ctx context.Context, showID uint64) (bool, error) {
	const q = `SELECT 1 FROM shows WHERE id = ?`
	var one int
	err := t.tx.QueryRowContext(ctx, q, showID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t *sqlTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, user_id, show_id, status, total_amount_cents) VALUES (?, ?, ?, ?, 0)`
	res, err := t.tx.ExecContext(ctx, q, b.Reference, b.UserID, b.ShowID, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate the DB-assigned timestamp.
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	return t.tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt)
}

// ClaimSeat is the compare-and-set at the heart of the protocol.  The
// status predicate in the WHERE clause makes the transition atomic:
// of two transactions racing on the same seat, the database serializes
// the row update and only the first sees AVAILABLE.  A seat id that
// does not belong to the show matches zero rows and reads as the same
// failure as an already-booked seat.
func (t *sqlTx) ClaimSeat(ctx context.Context, showID, seatID, bookingID uint64) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'BOOKED', booking_id = ?
	           WHERE id = ? AND show_id = ? AND status = 'AVAILABLE'`
	res, err := t.tx.ExecContext(ctx, q, bookingID, seatID, showID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *sqlTx) ClaimedSeats(ctx context.Context, bookingID uint64) ([]model.Seat, error) {
	const q = `SELECT id, show_id, row_label, seat_number, seat_type, price_cents, status, booking_id
	           FROM seats
	           WHERE booking_id = ?
	           ORDER BY row_label, seat_number`
	rows, err := t.tx.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		var bid sql.NullInt64
		if err := rows.Scan(&s.ID, &s.ShowID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.PriceCents, &s.Status, &bid); err != nil {
			return nil, err
		}
		if bid.Valid {
			id := uint64(bid.Int64)
			s.BookingID = &id
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

func (t *sqlTx) SetBookingTotal(ctx context.Context, bookingID uint64, totalCents uint32) error {
	const q = `UPDATE bookings SET total_amount_cents = ? WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q, totalCents, bookingID)
	return err
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
