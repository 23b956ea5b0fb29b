package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation outcomes for the reservations counter.
const (
	OutcomeReserved          = "reserved"
	OutcomeCapacityExhausted = "capacity_exhausted"
	OutcomeEventCancelled    = "event_cancelled"
	OutcomeNotFound          = "not_found"
	OutcomeError             = "error"
)

var (
	reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_reservations_total",
			Help: "Total ticket reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	ticketsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_expired_total",
			Help: "Total pending tickets expired by the sweeper",
		},
	)

	sweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_sweeps_total",
			Help: "Total sweeper runs by result",
		},
		[]string{"result"},
	)
)

// ObserveReservation records one reservation attempt with the given outcome.
func ObserveReservation(outcome string) {
	reservations.WithLabelValues(outcome).Inc()
}

// ObserveSweep records one sweeper run and the number of tickets it expired.
func ObserveSweep(expired int, failed bool) {
	ticketsExpired.Add(float64(expired))
	result := "ok"
	if failed {
		result = "error"
	}
	sweeps.WithLabelValues(result).Inc()
}
