package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehall/ticket-booking/internal/booking"
	"github.com/moviehall/ticket-booking/internal/model"
	"github.com/moviehall/ticket-booking/internal/queue"
	"github.com/moviehall/ticket-booking/internal/repository"
)

type stubReserver struct {
	booking *model.Booking
	err     error
}

func (s *stubReserver) Reserve(ctx context.Context, showID uint64, seatIDs []uint64, userID uint64) (*model.Booking, error) {
	return s.booking, s.err
}

type stubBookings struct {
	detail *repository.BookingDetail
	err    error
}

func (s *stubBookings) GetByID(ctx context.Context, id uint64) (*repository.BookingDetail, error) {
	return s.detail, s.err
}

func (s *stubBookings) ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error) {
	if s.detail == nil {
		return []repository.BookingDetail{}, s.err
	}
	return []repository.BookingDetail{*s.detail}, s.err
}

func confirmedBooking() *model.Booking {
	return &model.Booking{
		ID:               42,
		Reference:        "7d0f07be-0dbe-4c13-a455-4c54a4a76be8",
		UserID:           7,
		ShowID:           1,
		Status:           model.BookingConfirmed,
		TotalAmountCents: 3000,
		CreatedAt:        time.Now().UTC(),
		Seats: []model.Seat{
			{ID: 1, ShowID: 1, RowLabel: "A", SeatNumber: 1, PriceCents: 1500, Status: model.SeatBooked},
			{ID: 2, ShowID: 1, RowLabel: "A", SeatNumber: 2, PriceCents: 1500, Status: model.SeatBooked},
		},
	}
}

func confirmedDetail() *repository.BookingDetail {
	return &repository.BookingDetail{
		ID:               42,
		Reference:        "7d0f07be-0dbe-4c13-a455-4c54a4a76be8",
		UserID:           7,
		ShowID:           1,
		Status:           model.BookingConfirmed,
		TotalAmountCents: 3000,
		ShowTitle:        "Inception",
		Seats: []repository.BookedSeat{
			{SeatID: 1, RowLabel: "A", SeatNumber: 1, PriceCents: 1500},
			{SeatID: 2, RowLabel: "A", SeatNumber: 2, PriceCents: 1500},
		},
	}
}

func postBooking(t *testing.T, h *BookingHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h.CreateBooking(c))
	return rec
}

func TestCreateBookingSuccess(t *testing.T) {
	published := make(chan queue.BookingConfirmedEvent, 1)
	h := NewBookingHandler(
		&stubReserver{booking: confirmedBooking()},
		&stubBookings{detail: confirmedDetail()},
		func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
			published <- ev
			return nil
		},
	)

	rec := postBooking(t, h, `{"show_id":1,"seat_ids":[1,2],"user_id":7}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Item repository.BookingDetail `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(42), resp.Item.ID)
	assert.Equal(t, uint32(3000), resp.Item.TotalAmountCents)
	assert.Len(t, resp.Item.Seats, 2)

	select {
	case ev := <-published:
		assert.Equal(t, uint64(42), ev.BookingID)
		assert.Equal(t, []string{"A1", "A2"}, ev.SeatLabels)
	case <-time.After(time.Second):
		t.Fatal("confirmation event was not published")
	}
}

func TestCreateBookingErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid request", booking.ErrInvalidRequest, http.StatusBadRequest},
		{"seat conflict", booking.ErrSeatConflict, http.StatusConflict},
		{"store unavailable", booking.ErrStoreUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewBookingHandler(&stubReserver{err: tc.err}, &stubBookings{}, nil)
			rec := postBooking(t, h, `{"show_id":1,"seat_ids":[1],"user_id":7}`)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestCreateBookingRejectsMalformedBody(t *testing.T) {
	h := NewBookingHandler(&stubReserver{}, &stubBookings{}, nil)
	rec := postBooking(t, h, `{"seat_ids":"not-an-array"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUserBookingsRejectsBadID(t *testing.T) {
	h := NewBookingHandler(&stubReserver{}, &stubBookings{}, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/bookings/user/:userId")
	c.SetParamNames("userId")
	c.SetParamValues("abc")
	require.NoError(t, h.ListUserBookings(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingQR(t *testing.T) {
	t.Run("renders png", func(t *testing.T) {
		h := NewBookingHandler(&stubReserver{}, &stubBookings{detail: confirmedDetail()}, nil)
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/bookings/:id/qr")
		c.SetParamNames("id")
		c.SetParamValues("42")
		require.NoError(t, h.BookingQR(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
		// PNG magic bytes
		assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
	})

	t.Run("unknown booking is 404", func(t *testing.T) {
		h := NewBookingHandler(&stubReserver{}, &stubBookings{err: repository.ErrBookingNotFound}, nil)
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/bookings/:id/qr")
		c.SetParamNames("id")
		c.SetParamValues("42")
		require.NoError(t, h.BookingQR(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
