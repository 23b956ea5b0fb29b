package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"campusticketing/internal/domain"
)

// uniqueViolation is the postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// mapUniqueViolation translates a pq unique-violation error into the domain
// sentinel matching the violated constraint. Other errors pass through.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return err
	}
	switch {
	case strings.Contains(pqErr.Constraint, "ticket_number"):
		return domain.ErrDuplicateTicketNumber
	case strings.Contains(pqErr.Constraint, "student_id"):
		return domain.ErrDuplicateStudentID
	case strings.Contains(pqErr.Constraint, "email"):
		return domain.ErrDuplicateEmail
	}
	return err
}
