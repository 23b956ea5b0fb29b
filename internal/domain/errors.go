package domain

import "errors"

// Sentinel errors shared across services and repositories. Controllers map
// these to HTTP status codes with errors.Is; repositories translate driver
// errors into them so no SQL detail leaks past the repository layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// ErrConflict means a conditional update lost a race with a concurrent
	// writer. Safe to retry once at the call site that owns the operation.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrCapacityExhausted means the event has no tickets left.
	ErrCapacityExhausted = errors.New("no tickets available")

	// ErrEventCancelled means the event exists but no longer sells tickets.
	ErrEventCancelled = errors.New("event is cancelled")

	// ErrInvalidState means the ticket or event is in a status that forbids
	// the attempted transition (e.g. expiring a confirmed ticket).
	ErrInvalidState = errors.New("operation not allowed in current status")

	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicateEmail        = errors.New("email already in use")
	ErrDuplicateStudentID    = errors.New("student id already in use")
	ErrDuplicateTicketNumber = errors.New("ticket number already in use")
)
