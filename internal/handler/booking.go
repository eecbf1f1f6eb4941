package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehall/ticket-booking/internal/booking"
	"github.com/moviehall/ticket-booking/internal/model"
	"github.com/moviehall/ticket-booking/internal/queue"
	"github.com/moviehall/ticket-booking/internal/repository"
	"github.com/moviehall/ticket-booking/internal/utils"
)

// Reserver is the slice of the reservation service the HTTP layer
// needs.  Tests substitute a stub.
type Reserver interface {
	Reserve(ctx context.Context, showID uint64, seatIDs []uint64, userID uint64) (*model.Booking, error)
}

// BookingReader is the slice of the booking repository the HTTP layer
// needs for receipts and listings.
type BookingReader interface {
	GetByID(ctx context.Context, id uint64) (*repository.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
}

// PublishFunc delivers a confirmation event to the broker.  It may be
// nil when no broker is configured.
type PublishFunc func(ctx context.Context, ev queue.BookingConfirmedEvent) error

// BookingHandler exposes the booking endpoints: creating a booking
// through the reservation service and reading bookings back for
// receipt and history display.
type BookingHandler struct {
	Reserve  Reserver
	Bookings BookingReader
	Publish  PublishFunc
}

// NewBookingHandler constructs a BookingHandler.  Reserve and Bookings
// must be non-nil; Publish may be nil to disable event publishing.
func NewBookingHandler(reserve Reserver, bookings BookingReader, publish PublishFunc) *BookingHandler {
	if reserve == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Reserve: reserve, Bookings: bookings, Publish: publish}
}

type createBookingReq struct {
	ShowID  uint64   `json:"show_id"`
	SeatIDs []uint64 `json:"seat_ids"`
	UserID  uint64   `json:"user_id"`
}

// CreateBooking handles POST /api/bookings.  It binds the request,
// invokes the reservation service and maps its error taxonomy onto
// HTTP statuses: invalid request 400, seat conflict 409, store
// unavailable 503.  On success it returns 201 with the booking and
// publishes a booking.confirmed event.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	b, err := h.Reserve.Reserve(ctx, req.ShowID, req.SeatIDs, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking request"})
		case errors.Is(err, booking.ErrSeatConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "one or more seats are already booked"})
		case errors.Is(err, booking.ErrStoreUnavailable):
			log.Printf("booking: store unavailable: %v", err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "booking temporarily unavailable"})
		default:
			log.Printf("booking: unexpected error: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
		}
	}

	// The booking is durable at this point; the receipt detail and the
	// event are best-effort extras on top of it.
	det, derr := h.Bookings.GetByID(ctx, b.ID)
	if derr != nil {
		log.Printf("booking: load receipt for %d failed: %v", b.ID, derr)
		det = fallbackDetail(b)
	}

	if h.Publish != nil {
		ev := confirmedEvent(det)
		go func() {
			pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.Publish(pctx, ev); err != nil {
				log.Printf("booking: publish confirmed event for %d failed: %v", ev.BookingID, err)
			}
		}()
	}

	return c.JSON(http.StatusCreated, echo.Map{"item": det})
}

// ListUserBookings handles GET /api/bookings/user/:userId.  It returns
// the user's bookings, newest first.
func (h *BookingHandler) ListUserBookings(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// BookingQR handles GET /api/bookings/:id/qr.  It renders the
// booking's reference as a PNG QR code for receipt display.
func (h *BookingHandler) BookingQR(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	det, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	png, err := utils.BookingQRPNG(det.Reference, 300)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render qr code"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// fallbackDetail builds a receipt from the in-memory booking when the
// read-back query fails right after commit.
func fallbackDetail(b *model.Booking) *repository.BookingDetail {
	det := &repository.BookingDetail{
		ID:               b.ID,
		Reference:        b.Reference,
		UserID:           b.UserID,
		ShowID:           b.ShowID,
		Status:           b.Status,
		TotalAmountCents: b.TotalAmountCents,
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
		Seats:            make([]repository.BookedSeat, 0, len(b.Seats)),
	}
	for _, s := range b.Seats {
		det.Seats = append(det.Seats, repository.BookedSeat{
			SeatID:     s.ID,
			RowLabel:   s.RowLabel,
			SeatNumber: s.SeatNumber,
			PriceCents: s.PriceCents,
		})
	}
	return det
}

// confirmedEvent maps a receipt onto the broker payload.
func confirmedEvent(det *repository.BookingDetail) queue.BookingConfirmedEvent {
	labels := make([]string, 0, len(det.Seats))
	for _, s := range det.Seats {
		labels = append(labels, fmt.Sprintf("%s%d", s.RowLabel, s.SeatNumber))
	}
	return queue.BookingConfirmedEvent{
		BookingID:        det.ID,
		Reference:        det.Reference,
		UserID:           det.UserID,
		ShowID:           det.ShowID,
		ShowTitle:        det.ShowTitle,
		SeatLabels:       labels,
		TotalAmountCents: det.TotalAmountCents,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}
