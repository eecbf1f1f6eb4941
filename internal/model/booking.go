package model

import "time"

// BookingConfirmed is the only reachable booking status.  A booking
// row is only ever written inside the same transaction that claims
// its seats, so a persisted booking is confirmed by construction.
const BookingConfirmed = "CONFIRMED"

// Booking is an atomic claim over one or more seats of a show for one
// user.  The seat sets of all bookings for a show are pairwise
// disjoint: the per-seat conditional transition enforced by the store
// makes it impossible for two bookings to claim the same seat.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – opaque reference printed on receipts and QR codes.
//  UserID           – user who made the booking.
//  ShowID           – show being booked.
//  Status           – always CONFIRMED.
//  TotalAmountCents – sum of the claimed seats' prices.
//  CreatedAt        – creation timestamp.
//  Seats            – the seats claimed by this booking.
type Booking struct {
	ID               uint64    // bookings.id
	Reference        string    // bookings.reference
	UserID           uint64    // bookings.user_id
	ShowID           uint64    // bookings.show_id
	Status           string    // bookings.status
	TotalAmountCents uint32    // bookings.total_amount_cents
	CreatedAt        time.Time // bookings.created_at
	Seats            []Seat    // claimed seats, populated on success
}
