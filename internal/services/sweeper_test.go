package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusticketing/internal/domain"
)

func TestSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("expires overdue holds and restores capacity", func(t *testing.T) {
		fx := newTicketFixture(t, 10)
		sweeper := NewSweeper(fx.store, fx.store, fx.clk, time.Hour, testLogger())

		t1, err := fx.svc.ReserveTicket(ctx, fx.event.ID, "user-1")
		require.NoError(t, err)
		t2, err := fx.svc.ReserveTicket(ctx, fx.event.ID, "user-1")
		require.NoError(t, err)

		// Not yet due: one second before the hold window closes.
		fx.clk.Advance(24*time.Hour - time.Second)
		expired, err := sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, expired)

		fx.clk.Advance(time.Second)
		expired, err = sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, expired)

		stored, err := fx.events.GetByID(ctx, fx.event.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, stored.AvailableTickets, "both seats returned")

		for _, id := range []string{t1.ID, t2.ID} {
			got, err := fx.store.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, domain.TicketExpired, got.Status)
		}
	})

	t.Run("back-to-back sweeps are idempotent", func(t *testing.T) {
		fx := newTicketFixture(t, 10)
		sweeper := NewSweeper(fx.store, fx.store, fx.clk, time.Hour, testLogger())

		_, err := fx.svc.ReserveTicket(ctx, fx.event.ID, "user-1")
		require.NoError(t, err)
		fx.clk.Advance(25 * time.Hour)

		expired, err := sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		expired, err = sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, expired, "second sweep finds nothing to do")

		stored, err := fx.events.GetByID(ctx, fx.event.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, stored.AvailableTickets, "capacity restored exactly once")
	})

	t.Run("confirmed tickets are never expired", func(t *testing.T) {
		fx := newTicketFixture(t, 10)
		sweeper := NewSweeper(fx.store, fx.store, fx.clk, time.Hour, testLogger())

		ticket, err := fx.svc.ReserveTicket(ctx, fx.event.ID, "user-1")
		require.NoError(t, err)
		_, err = fx.svc.ConfirmTicket(ctx, ticket.ID, "user-1", "pay-1", domain.PaymentCard)
		require.NoError(t, err)

		fx.clk.Advance(48 * time.Hour)
		expired, err := sweeper.SweepOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, expired)

		got, err := fx.store.GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketConfirmed, got.Status)
	})

	t.Run("ticket flipped between scan and expire is skipped", func(t *testing.T) {
		fx := newTicketFixture(t, 10)
		sweeper := NewSweeper(&racingTicketRepo{fx: fx}, fx.store, fx.clk, time.Hour, testLogger())

		_, err := fx.svc.ReserveTicket(ctx, fx.event.ID, "user-1")
		require.NoError(t, err)
		fx.clk.Advance(25 * time.Hour)

		expired, err := sweeper.SweepOnce(ctx)
		require.NoError(t, err, "losing the race is not an error")
		assert.Equal(t, 0, expired)
	})

	t.Run("cancelled context stops mid sweep", func(t *testing.T) {
		fx := newTicketFixture(t, 10)
		sweeper := NewSweeper(fx.store, fx.store, fx.clk, time.Hour, testLogger())

		_, err := fx.svc.ReserveTicket(ctx, fx.event.ID, "user-1")
		require.NoError(t, err)
		fx.clk.Advance(25 * time.Hour)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = sweeper.SweepOnce(cancelled)
		require.ErrorIs(t, err, context.Canceled)
	})
}

// racingTicketRepo simulates a confirm racing the sweeper: every ticket it
// reports as overdue gets confirmed before the sweeper can expire it.
type racingTicketRepo struct {
	fx *ticketFixture
}

func (r *racingTicketRepo) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	ids, err := r.fx.store.ListExpiredPending(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := r.fx.store.Confirm(ctx, id, "user-1", "pay-race", domain.PaymentOnline, now); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (r *racingTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fx.store.GetByID(ctx, id)
}

func (r *racingTicketRepo) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	return r.fx.store.GetByNumber(ctx, number)
}

func (r *racingTicketRepo) ListByUserWithEvent(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	return r.fx.store.ListByUserWithEvent(ctx, userID)
}

func (r *racingTicketRepo) Confirm(ctx context.Context, id, userID, paymentID, paymentMethod string, now time.Time) error {
	return r.fx.store.Confirm(ctx, id, userID, paymentID, paymentMethod, now)
}

func (r *racingTicketRepo) CheckIn(ctx context.Context, number string, now time.Time) error {
	return r.fx.store.CheckIn(ctx, number, now)
}

func TestSweeper_Run(t *testing.T) {
	fx := newTicketFixture(t, 10)
	sweeper := NewSweeper(fx.store, fx.store, fx.clk, 10*time.Millisecond, testLogger())

	ctx := context.Background()
	_, err := fx.svc.ReserveTicket(ctx, fx.event.ID, "user-1")
	require.NoError(t, err)
	fx.clk.Advance(25 * time.Hour)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		sweeper.Run(runCtx)
		close(done)
	}()

	// The immediate first sweep should pick the overdue ticket up.
	require.Eventually(t, func() bool {
		stored, err := fx.events.GetByID(ctx, fx.event.ID)
		return err == nil && stored.AvailableTickets == 10
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
