package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/moviehall/ticket-booking/internal/model"
)

// ShowRepo manages persistence for shows and their seat grids.  All
// timestamps are stored in UTC; the DSN's parseTime option scans them
// as time.Time.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

// ShowSummary is the listing view of a show.  Seat data is omitted;
// clients fetch the seat map via GetWithSeats when rendering a show.
type ShowSummary struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Poster         string `json:"poster"`
	Banner         string `json:"banner"`
	StartsAt       string `json:"starts_at"`
	BasePriceCents uint32 `json:"base_price_cents"`
}

// SeatView is the public view of one seat in a show's seat map.
type SeatView struct {
	ID         uint64 `json:"id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	SeatType   string `json:"seat_type"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
}

// ShowDetail is a show together with its full seat map ordered by row
// label then seat number.
type ShowDetail struct {
	ShowSummary
	Seats []SeatView `json:"seats"`
}

// Create inserts a new show and assigns the generated ID back to the
// model.  The start time is stored in UTC.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (title, description, poster, banner, starts_at, base_price_cents) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Title, s.Description, s.Poster, s.Banner, s.StartsAt.UTC(), s.BasePriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateSeatsBulk inserts a show's seat grid in a single statement.
// Passing an empty slice has no effect and returns nil.
func (r *ShowRepo) CreateSeatsBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (show_id, row_label, seat_number, seat_type, price_cents, status) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, s.ShowID, s.RowLabel, s.SeatNumber, s.SeatType, s.PriceCents, s.Status)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// List returns all shows ordered by start time ascending.
func (r *ShowRepo) List(ctx context.Context) ([]ShowSummary, error) {
	const q = `SELECT id, title, description, poster, banner, starts_at, base_price_cents
	           FROM shows
	           ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := make([]ShowSummary, 0)
	for rows.Next() {
		var s ShowSummary
		var startsAt time.Time
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Poster, &s.Banner, &startsAt, &s.BasePriceCents); err != nil {
			return nil, err
		}
		s.StartsAt = startsAt.UTC().Format(time.RFC3339)
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shows, nil
}

// GetWithSeats returns a show and its seat map.  It returns
// ErrShowNotFound when no show with the given ID exists.  Seats are
// ordered by row label then seat number for deterministic rendering.
func (r *ShowRepo) GetWithSeats(ctx context.Context, id uint64) (*ShowDetail, error) {
	const q = `SELECT id, title, description, poster, banner, starts_at, base_price_cents
	           FROM shows WHERE id = ?`
	var det ShowDetail
	var startsAt time.Time
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.Title, &det.Description, &det.Poster, &det.Banner, &startsAt, &det.BasePriceCents,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	det.StartsAt = startsAt.UTC().Format(time.RFC3339)

	const seatQ = `SELECT id, row_label, seat_number, seat_type, price_cents, status
	               FROM seats
	               WHERE show_id = ?
	               ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, seatQ, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	det.Seats = make([]SeatView, 0, 80)
	for rows.Next() {
		var sv SeatView
		if err := rows.Scan(&sv.ID, &sv.RowLabel, &sv.SeatNumber, &sv.SeatType, &sv.PriceCents, &sv.Status); err != nil {
			return nil, err
		}
		det.Seats = append(det.Seats, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}
