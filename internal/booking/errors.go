// Package booking implements the seat reservation service: the single
// component that is allowed to transition seats from AVAILABLE to
// BOOKED.  It is stateless except through the transactional store it
// is constructed with.
package booking

import "errors"

// ErrInvalidRequest is returned for caller mistakes: an empty seat set
// or a show that does not exist.  Retrying the same request will not
// help.
var ErrInvalidRequest = errors.New("invalid reservation request")

// ErrSeatConflict is returned when one or more requested seats were
// not AVAILABLE at commit time.  This deliberately covers both seats
// already booked and seat ids unknown to the show, so that probing
// requests cannot distinguish the two.  Callers should re-fetch the
// seat map and let the user re-select.
var ErrSeatConflict = errors.New("one or more seats are not available")

// ErrStoreUnavailable is returned when the underlying store could not
// complete the unit of work for reasons unrelated to seat state.
// Nothing was committed, so the whole operation is safe to retry.
var ErrStoreUnavailable = errors.New("reservation store unavailable")
