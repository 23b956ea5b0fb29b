package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus is the lifecycle status of a ticket.
//
// Transitions form a one-way lattice:
//
//	pending   -> confirmed | expired | cancelled
//	confirmed -> used
//
// No other transition is valid; expiry only applies while pending.
type TicketStatus string

// Valid ticket statuses.
const (
	TicketPending   TicketStatus = "pending"
	TicketConfirmed TicketStatus = "confirmed"
	TicketExpired   TicketStatus = "expired"
	TicketCancelled TicketStatus = "cancelled"
	TicketUsed      TicketStatus = "used"
)

// Payment methods accepted on confirmation.
const (
	PaymentCard   = "card"
	PaymentWallet = "wallet"
	PaymentCash   = "cash"
	PaymentOnline = "online"
)

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCard, PaymentWallet, PaymentCash, PaymentOnline:
		return true
	}
	return false
}

// Ticket represents a reservation of one seat for an event.
//
// Price is copied from the event inside the reservation transaction and is
// immutable afterwards. Tickets are never deleted; they are retained as
// history in a terminal status.
// swagger:model Ticket
type Ticket struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	UserID        string          `json:"user_id"`
	TicketNumber  string          `json:"ticket_number"`
	Price         decimal.Decimal `json:"price"`
	Status        TicketStatus    `json:"status"`
	ExpiresAt     time.Time       `json:"expires_at"`
	PaymentID     *string         `json:"payment_id,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	CheckedIn     bool            `json:"checked_in"`
	CheckedInAt   *time.Time      `json:"checked_in_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TicketWithEvent bundles a ticket with its event's display fields.
type TicketWithEvent struct {
	Ticket     *Ticket   `json:"ticket"`
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
	EventVenue string    `json:"event_venue"`
}

// ReservationRepository is the atomic boundary between the event catalog and
// the ticket store. Every operation here mutates the capacity counter and a
// ticket row as a single transaction; it is the only place both must stay
// consistent.
type ReservationRepository interface {
	// Reserve decrements the event's available counter and inserts t as one
	// atomic unit. The decrement is conditional (counter > 0, event not
	// cancelled); on failure it returns ErrNotFound, ErrEventCancelled, or
	// ErrCapacityExhausted. t.Price is filled from the event row inside the
	// same transaction. A ticket-number collision returns
	// ErrDuplicateTicketNumber with nothing written.
	Reserve(ctx context.Context, eventID string, t *Ticket) error

	// ExpireTicket flips a pending ticket to expired and returns one unit of
	// capacity to its event in a single transaction. Returns ErrInvalidState
	// when the ticket is no longer pending (making sweeps idempotent) and
	// ErrNotFound when it does not exist.
	ExpireTicket(ctx context.Context, ticketID string) error

	// CancelTicket is ExpireTicket for a user-initiated cancellation: the
	// pending ticket must belong to userID.
	CancelTicket(ctx context.Context, ticketID, userID string) error
}

// TicketRepository defines plain (non-compound) ticket storage operations.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*Ticket, error)
	// ListByUserWithEvent returns the user's tickets joined with event
	// display fields, most recently created first.
	ListByUserWithEvent(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	// ListExpiredPending returns ids of tickets still pending whose
	// expires_at is at or before now, oldest first, up to limit.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error)
	// Confirm transitions a pending ticket owned by userID to confirmed and
	// records the payment reference. ErrInvalidState when not pending.
	Confirm(ctx context.Context, id, userID, paymentID, paymentMethod string, now time.Time) error
	// CheckIn transitions a confirmed ticket to used and stamps the check-in
	// time. ErrInvalidState when the ticket is not confirmed.
	CheckIn(ctx context.Context, ticketNumber string, now time.Time) error
}

// TicketService defines the reservation lifecycle operations.
type TicketService interface {
	ReserveTicket(ctx context.Context, eventID, userID string) (*Ticket, error)
	ListUserTickets(ctx context.Context, userID string) ([]*TicketWithEvent, error)
	ConfirmTicket(ctx context.Context, ticketID, userID, paymentID, paymentMethod string) (*Ticket, error)
	CancelTicket(ctx context.Context, ticketID, userID string) error
	CheckIn(ctx context.Context, ticketNumber string) (*Ticket, error)
}
