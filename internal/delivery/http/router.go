package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"campusticketing/internal/delivery/http/controllers"
	"campusticketing/internal/delivery/http/middleware"
	"campusticketing/internal/domain"
)

// RouterConfig bundles everything the router needs.
type RouterConfig struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier

	Auth    *controllers.AuthController
	Events  *controllers.EventController
	Tickets *controllers.TicketController
}

// NewRouter wires all routes onto a ServeMux. Authentication and authorization
// are applied per route; CORS and request logging wrap the whole mux in main.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	// Auth
	mux.HandleFunc("POST /auth/register", cfg.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)

	// Events
	mux.HandleFunc("GET /events", cfg.Events.List)
	mux.HandleFunc("GET /events/{id}", cfg.Events.Get)
	mux.HandleFunc("POST /events", auth(cfg.Events.Create))
	mux.HandleFunc("DELETE /events/{id}", auth(cfg.Events.Cancel))

	// Tickets
	mux.HandleFunc("POST /events/{id}/tickets", auth(cfg.Tickets.Reserve))
	mux.HandleFunc("GET /tickets/me", auth(cfg.Tickets.ListMine))
	mux.HandleFunc("POST /tickets/{id}/confirm", auth(cfg.Tickets.Confirm))
	mux.HandleFunc("DELETE /tickets/{id}", auth(cfg.Tickets.Cancel))
	mux.HandleFunc("POST /tickets/check-in", auth(middleware.RequireAdmin(cfg.Tickets.CheckIn)))

	// Operational endpoints
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mux
}
