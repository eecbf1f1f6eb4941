// Package repository defines sentinel errors reused across
// repositories so that handlers can map failure scenarios to HTTP
// responses without inspecting SQL details.
package repository

import "errors"

// ErrShowNotFound indicates that a show lookup yielded no rows.
// Handlers should translate this into an HTTP 404 response.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound indicates that a booking lookup yielded no rows.
// Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")
