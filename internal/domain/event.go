package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventCategory classifies campus events.
type EventCategory string

// Valid event categories.
const (
	CategoryAcademic  EventCategory = "academic"
	CategoryCultural  EventCategory = "cultural"
	CategorySports    EventCategory = "sports"
	CategoryTechnical EventCategory = "technical"
	CategorySocial    EventCategory = "social"
	CategoryOther     EventCategory = "other"
)

// ValidCategory reports whether c is one of the known event categories.
func ValidCategory(c EventCategory) bool {
	switch c {
	case CategoryAcademic, CategoryCultural, CategorySports, CategoryTechnical, CategorySocial, CategoryOther:
		return true
	}
	return false
}

// EventStatus is the lifecycle status of an event.
type EventStatus string

// Valid event statuses.
const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Event represents a campus event with a fixed ticket capacity.
//
// TotalTickets is set at creation and never changes. AvailableTickets only
// decreases on a successful reservation and only increases when a pending
// ticket is expired or cancelled; both mutations go through conditional
// updates in the reservation repository so the counter can never go negative
// or exceed TotalTickets.
// swagger:model Event
type Event struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Date             time.Time       `json:"date"`
	Venue            string          `json:"venue"`
	OrganizerID      string          `json:"organizer_id"`
	OrganizerName    string          `json:"organizer_name,omitempty"`
	TotalTickets     int             `json:"total_tickets"`
	AvailableTickets int             `json:"available_tickets"`
	Price            decimal.Decimal `json:"price"`
	Category         EventCategory   `json:"category"`
	Status           EventStatus     `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// EventFilter narrows event listings. Zero values mean "no filter".
type EventFilter struct {
	Category EventCategory
	Status   EventStatus
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns a page of events matching the filter, soonest date first,
	// along with the total match count.
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	// UpdateStatus transitions the event status. It only applies the change
	// when the current status is one of allowedFrom and returns
	// ErrInvalidState otherwise (ErrNotFound when the event is absent).
	UpdateStatus(ctx context.Context, id string, to EventStatus, allowedFrom []EventStatus) error
}

// EventService defines the business logic for the event catalog.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	// CancelEvent flips the event to cancelled. Only the organizer or an
	// admin may cancel; cancellation is a status flip, never a deletion.
	CancelEvent(ctx context.Context, eventID, callerID, callerRole string) error
}
