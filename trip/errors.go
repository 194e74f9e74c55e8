package trip

import "errors"

var (
	// ErrNotFound indicates the plan or session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the driver does not own the plan's truck
	// or the session belongs to another driver.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState indicates the milestone cannot be stamped from
	// the session's current state.
	ErrInvalidState = errors.New("invalid trip state")

	// ErrTooEarly indicates the plan's delivery date is beyond the
	// look-ahead window.
	ErrTooEarly = errors.New("plan outside look-ahead window")
)
