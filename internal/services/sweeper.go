package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusticketing/internal/clock"
	"campusticketing/internal/domain"
	"campusticketing/internal/monitoring"
)

// sweepBatchSize caps how many overdue tickets one sweep processes. Anything
// beyond the cap stays eligible for the next run.
const sweepBatchSize = 500

// Sweeper periodically expires pending tickets whose hold window has passed
// and returns their capacity to the event. Each ticket transitions in its own
// transaction, so an interrupted sweep never reprocesses finished tickets and
// leaves the rest eligible for the next run.
type Sweeper struct {
	ticketRepo      domain.TicketRepository
	reservationRepo domain.ReservationRepository
	clk             clock.Clock
	interval        time.Duration
	logger          *slog.Logger
}

func NewSweeper(
	ticketRepo domain.TicketRepository,
	reservationRepo domain.ReservationRepository,
	clk clock.Clock,
	interval time.Duration,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		ticketRepo:      ticketRepo,
		reservationRepo: reservationRepo,
		clk:             clk,
		interval:        interval,
		logger:          logger,
	}
}

// Run executes one sweep immediately and then on every interval tick until
// ctx is cancelled. Per-run failures are logged and deferred to the next
// tick, never retried immediately.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("expiration sweeper started", "interval", s.interval.String())

	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiration sweeper stopped")
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	expired, err := s.SweepOnce(ctx)
	monitoring.ObserveSweep(expired, err != nil)
	if err != nil {
		s.logger.Error("sweep failed", "expired", expired, "err", err)
		return
	}
	// Zero expired tickets is a normal outcome, not an error.
	s.logger.Info("sweep finished", "expired", expired)
}

// SweepOnce scans for overdue pending tickets and expires each one, releasing
// one unit of event capacity per ticket. It returns how many tickets it
// expired. Tickets that left the pending status between the scan and the flip
// are skipped, which makes back-to-back sweeps a no-op the second time.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.clk.Now()
	ids, err := s.ticketRepo.ListExpiredPending(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	var firstErr error
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		err := s.reservationRepo.ExpireTicket(ctx, id)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFound):
			// Already transitioned by a confirm, cancel, or a racing sweep.
		default:
			s.logger.Warn("expire ticket failed", "ticket", id, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return expired, firstErr
}
