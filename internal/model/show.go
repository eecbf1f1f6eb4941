package model

import "time"

// Show represents a scheduled screening of a movie.  A show owns an
// ordered collection of seats which are generated once when the show
// is created and never restructured afterwards.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – movie title.
//  Description    – short synopsis shown in listings.
//  Poster         – URL of the poster image.
//  Banner         – URL of the banner image.
//  StartsAt       – when the screening begins.
//  BasePriceCents – price in cents for a standard seat; premium rows
//                   derive their price from this value at seat
//                   generation time.
//  CreatedAt      – creation timestamp.
type Show struct {
	ID             uint64    // shows.id
	Title          string    // shows.title
	Description    string    // shows.description
	Poster         string    // shows.poster
	Banner         string    // shows.banner
	StartsAt       time.Time // shows.starts_at
	BasePriceCents uint32    // shows.base_price_cents
	CreatedAt      time.Time // shows.created_at
}
