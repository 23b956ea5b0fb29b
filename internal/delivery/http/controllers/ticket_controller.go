package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"campusticketing/internal/delivery/http/helpers"
	"campusticketing/internal/delivery/http/middleware"
	"campusticketing/internal/domain"
)

type TicketController struct {
	Logger  *slog.Logger
	Service domain.TicketService
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService) *TicketController {
	return &TicketController{
		Logger:  logger,
		Service: svc,
	}
}

// ConfirmTicketRequest is the request body for POST /tickets/{id}/confirm
type ConfirmTicketRequest struct {
	PaymentID     string `json:"payment_id"`
	PaymentMethod string `json:"payment_method"` // card, wallet, cash or online; defaults to online
}

// Validate implements helpers.Validator.
func (c ConfirmTicketRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.PaymentID) == "" {
		errs = append(errs, "payment_id is required")
	}
	if c.PaymentMethod != "" && !domain.ValidPaymentMethod(c.PaymentMethod) {
		errs = append(errs, "unknown payment method")
	}
	return errs
}

// CheckInRequest is the request body for POST /tickets/check-in
type CheckInRequest struct {
	TicketNumber string `json:"ticket_number"`
}

// Validate implements helpers.Validator.
func (c CheckInRequest) Validate() []string {
	if strings.TrimSpace(c.TicketNumber) == "" {
		return []string{"ticket_number is required"}
	}
	return nil
}

// Reserve godoc
// @Summary Reserve a ticket
// @Description Holds one seat for the caller. The reservation stays pending until confirmed and expires after the hold window.
// @Tags tickets
// @Produce json
// @Param id path string true "Event ID"
// @Success 201 {object} helpers.APIResponse "data is the pending Ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exhausted or event_cancelled"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Security BearerAuth
// @Router /events/{id}/tickets [post]
func (c *TicketController) Reserve(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}

	eventID := r.PathValue("id")
	if uuid.Validate(eventID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return
	}

	ticket, err := c.Service.ReserveTicket(r.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrCapacityExhausted):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCapacityExhausted, "event is sold out")
		case errors.Is(err, domain.ErrEventCancelled):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventCancelled, "event is cancelled")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to reserve ticket")
		}
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, ticket)
}

// ListMine godoc
// @Summary List my tickets
// @Description Lists the caller's tickets with event details, most recent first.
// @Tags tickets
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is a list of TicketWithEvent"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Security BearerAuth
// @Router /tickets/me [get]
func (c *TicketController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}

	tickets, err := c.Service.ListUserTickets(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list tickets")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, tickets)
}

// Confirm godoc
// @Summary Confirm a reserved ticket
// @Description Records payment and flips the caller's pending ticket to confirmed.
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param body body controllers.ConfirmTicketRequest true "Payment reference"
// @Success 200 {object} helpers.APIResponse "data is the confirmed Ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Security BearerAuth
// @Router /tickets/{id}/confirm [post]
func (c *TicketController) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}

	ticketID := r.PathValue("id")
	if uuid.Validate(ticketID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ticket id")
		return
	}

	var req ConfirmTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := c.Service.ConfirmTicket(r.Context(), ticketID, userID, req.PaymentID, req.PaymentMethod)
	if err != nil {
		c.writeTicketError(w, r, err, "failed to confirm ticket")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// Cancel godoc
// @Summary Cancel a reserved ticket
// @Description Flips the caller's pending ticket to cancelled and returns its seat to the event.
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Security BearerAuth
// @Router /tickets/{id} [delete]
func (c *TicketController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
		return
	}

	ticketID := r.PathValue("id")
	if uuid.Validate(ticketID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ticket id")
		return
	}

	if err := c.Service.CancelTicket(r.Context(), ticketID, userID); err != nil {
		c.writeTicketError(w, r, err, "failed to cancel ticket")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckIn godoc
// @Summary Check in a ticket at the venue
// @Description Flips a confirmed ticket to used by ticket number. Admin only.
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body controllers.CheckInRequest true "Ticket number"
// @Success 200 {object} helpers.APIResponse "data is the used Ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Security BearerAuth
// @Router /tickets/check-in [post]
func (c *TicketController) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := c.Service.CheckIn(r.Context(), strings.TrimSpace(req.TicketNumber))
	if err != nil {
		c.writeTicketError(w, r, err, "failed to check in ticket")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

func (c *TicketController) writeTicketError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "ticket not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "ticket belongs to another user")
	case errors.Is(err, domain.ErrInvalidState):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInvalidState, "ticket is not in a valid status for this operation")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, fallback)
	}
}
