package model

// Seat statuses.  A seat moves from AVAILABLE to BOOKED exactly once;
// there is no reverse transition.
const (
	SeatAvailable = "AVAILABLE"
	SeatBooked    = "BOOKED"
)

// Seat types.  Premium rows are priced at 1.5x the show's base price.
const (
	SeatStandard = "STANDARD"
	SeatPremium  = "PREMIUM"
)

// Seat describes a single bookable seat belonging to exactly one show.
// RowLabel and SeatNumber identify the seat's position in the grid.
// BookingID is nil while the seat is AVAILABLE and references the
// owning booking once the seat is BOOKED.  The booking is the source
// of truth for the claim; the back-reference exists for lookups only.
type Seat struct {
	ID         uint64  // seats.id
	ShowID     uint64  // seats.show_id
	RowLabel   string  // e.g. A, B, H
	SeatNumber uint32  // position in the row (1-based)
	SeatType   string  // STANDARD | PREMIUM
	PriceCents uint32  // price snapshotted at show creation
	Status     string  // AVAILABLE | BOOKED
	BookingID  *uint64 // owning booking when BOOKED
}

// seatRows is the fixed auditorium layout: eight rows of ten seats,
// with the last two rows sold as premium.
var seatRows = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

const seatsPerRow = 10

// GenerateSeats builds the full seat grid for a show.  Rows G and H
// are PREMIUM at 1.5x the base price, all other rows are STANDARD at
// the base price.  Every seat starts AVAILABLE with no booking
// reference.
func GenerateSeats(showID uint64, basePriceCents uint32) []Seat {
	seats := make([]Seat, 0, len(seatRows)*seatsPerRow)
	for _, row := range seatRows {
		premium := row == "G" || row == "H"
		price := basePriceCents
		seatType := SeatStandard
		if premium {
			price = basePriceCents + basePriceCents/2
			seatType = SeatPremium
		}
		for n := uint32(1); n <= seatsPerRow; n++ {
			seats = append(seats, Seat{
				ShowID:     showID,
				RowLabel:   row,
				SeatNumber: n,
				SeatType:   seatType,
				PriceCents: price,
				Status:     SeatAvailable,
			})
		}
	}
	return seats
}
