package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"campusticketing/internal/clock"
	"campusticketing/internal/domain"
	"campusticketing/internal/monitoring"
)

// numberAttempts bounds the retry loop on ticket-number collisions. The
// suffix space is 90000 values per day, so a second collision in a row is
// already vanishingly unlikely.
const numberAttempts = 3

type ticketService struct {
	reservationRepo domain.ReservationRepository
	ticketRepo      domain.TicketRepository
	eventRepo       domain.EventRepository
	userRepo        domain.UserRepository
	emailService    domain.EmailService
	clk             clock.Clock
	holdWindow      time.Duration
	contextTimeout  time.Duration
	logger          *slog.Logger
}

// NewTicketService creates a TicketService. holdWindow is how long a pending
// reservation keeps its seat before the sweeper reclaims it.
func NewTicketService(
	reservationRepo domain.ReservationRepository,
	ticketRepo domain.TicketRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	clk clock.Clock,
	holdWindow time.Duration,
	timeout time.Duration,
	logger *slog.Logger,
) domain.TicketService {
	return &ticketService{
		reservationRepo: reservationRepo,
		ticketRepo:      ticketRepo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		clk:             clk,
		holdWindow:      holdWindow,
		contextTimeout:  timeout,
		logger:          logger,
	}
}

func (s *ticketService) ReserveTicket(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.clk.Now()
	var ticket *domain.Ticket
	var err error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		number, genErr := generateTicketNumber(now)
		if genErr != nil {
			return nil, fmt.Errorf("generate ticket number: %w", genErr)
		}
		ticket = &domain.Ticket{
			ID:           uuid.NewString(),
			EventID:      eventID,
			UserID:       userID,
			TicketNumber: number,
			Status:       domain.TicketPending,
			ExpiresAt:    now.Add(s.holdWindow),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = s.reservationRepo.Reserve(ctx, eventID, ticket)
		if !errors.Is(err, domain.ErrDuplicateTicketNumber) {
			break
		}
	}
	if err != nil {
		monitoring.ObserveReservation(reservationOutcome(err))
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrEventCancelled),
			errors.Is(err, domain.ErrCapacityExhausted):
			return nil, err
		default:
			return nil, fmt.Errorf("reserve ticket: %w", err)
		}
	}
	monitoring.ObserveReservation(monitoring.OutcomeReserved)

	s.sendReservationEmail(ctx, ticket)
	return ticket, nil
}

func reservationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapacityExhausted):
		return monitoring.OutcomeCapacityExhausted
	case errors.Is(err, domain.ErrEventCancelled):
		return monitoring.OutcomeEventCancelled
	case errors.Is(err, domain.ErrNotFound):
		return monitoring.OutcomeNotFound
	default:
		return monitoring.OutcomeError
	}
}

// sendReservationEmail notifies the holder about the reservation and its
// expiry. Best effort: the seat is already held, so failures are only logged.
func (s *ticketService) sendReservationEmail(ctx context.Context, t *domain.Ticket) {
	event, err := s.eventRepo.GetByID(ctx, t.EventID)
	if err != nil {
		s.logger.Warn("reservation email skipped: load event", "ticket", t.ID, "err", err)
		return
	}
	user, err := s.userRepo.GetByID(ctx, t.UserID)
	if err != nil {
		s.logger.Warn("reservation email skipped: load user", "ticket", t.ID, "err", err)
		return
	}
	data := &domain.TicketReservedEmailData{
		Email:        user.Email,
		Name:         user.Name,
		EventTitle:   event.Title,
		EventDate:    event.Date.Format(time.RFC1123),
		EventVenue:   event.Venue,
		TicketNumber: t.TicketNumber,
		Price:        t.Price.StringFixed(2),
		ExpiresAt:    t.ExpiresAt.Format(time.RFC1123),
	}
	if err := s.emailService.SendTicketReserved(ctx, data); err != nil {
		s.logger.Warn("reservation email failed", "ticket", t.ID, "err", err)
	}
}

func (s *ticketService) ListUserTickets(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, err := s.ticketRepo.ListByUserWithEvent(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketWithEvent{}
	}
	return tickets, nil
}

func (s *ticketService) ConfirmTicket(ctx context.Context, ticketID, userID, paymentID, paymentMethod string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if paymentMethod == "" {
		paymentMethod = domain.PaymentOnline
	}
	if !domain.ValidPaymentMethod(paymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidInput, paymentMethod)
	}

	err := s.ticketRepo.Confirm(ctx, ticketID, userID, paymentID, paymentMethod, s.clk.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrInvalidState) {
			return nil, err
		}
		return nil, fmt.Errorf("confirm ticket: %w", err)
	}
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("reload ticket: %w", err)
	}
	return ticket, nil
}

func (s *ticketService) CancelTicket(ctx context.Context, ticketID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.reservationRepo.CancelTicket(ctx, ticketID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrInvalidState) {
			return err
		}
		return fmt.Errorf("cancel ticket: %w", err)
	}
	return nil
}

func (s *ticketService) CheckIn(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.ticketRepo.CheckIn(ctx, ticketNumber, s.clk.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidState) {
			return nil, err
		}
		return nil, fmt.Errorf("check in ticket: %w", err)
	}
	ticket, err := s.ticketRepo.GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, fmt.Errorf("reload ticket: %w", err)
	}
	return ticket, nil
}

// generateTicketNumber builds a human-readable ticket number from the day
// stamp and a random 5-digit suffix, e.g. TICKET-20260901-48213. Uniqueness
// is enforced by the store; callers retry on collision.
func generateTicketNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TICKET-%s-%05d", now.Format("20060102"), n.Int64()+10000), nil
}
