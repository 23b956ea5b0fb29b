package services

import (
	"context"
	"fmt"
	"log"

	"campusticketing/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendWelcomeMessage sends a welcome email using the "welcome" template and the given data.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	log.Printf("[EMAIL] Welcome email sent to %s", data.Email)
	return nil
}

// SendTicketReserved sends the reservation confirmation using the "ticket_reserved" template.
func (s *emailService) SendTicketReserved(ctx context.Context, data *domain.TicketReservedEmailData) error {
	if data == nil {
		return fmt.Errorf("ticket reserved data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("ticket_reserved", data)
	if err != nil {
		return fmt.Errorf("failed to render ticket_reserved template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send ticket reserved email: %w", err)
	}
	log.Printf("[EMAIL] Reservation email sent to %s", data.Email)
	return nil
}
