package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/i18n"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/repository"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/service"
)

// Dependencies are the collaborators the router hands to its handlers.
type Dependencies struct {
	Conn          repository.Conn
	Registrations *service.RegistrationManager
	Events        *service.EventService
	Users         *service.UserService
	Translator    *i18n.Translator
	Logger        *slog.Logger
	JWTSecret     string
}

// NewRouter builds the API router with its global middleware stack.
func NewRouter(d Dependencies) http.Handler {
	rs := responder{tr: d.Translator, logger: d.Logger}
	auth := NewAuthenticator(d.JWTSecret, d.Translator, d.Logger)
	events := &EventHandler{responder: rs, conn: d.Conn, events: d.Events, regs: d.Registrations}
	regs := &RegistrationHandler{responder: rs, conn: d.Conn, regs: d.Registrations}
	users := &UserHandler{responder: rs, conn: d.Conn, users: d.Users, regs: d.Registrations}

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(d.Logger))        // structured access log
	r.Use(CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rs.writeError(w, r, http.StatusNotFound, i18n.NotFound, nil)
	})

	r.Get("/health", HealthCheck)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.CreateUser)
		r.Get("/{id}", users.GetUser)
		r.Get("/{id}/events", users.ListUserEvents)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", events.ListEvents)
		r.Get("/{id}", events.GetEvent)
		r.Get("/{id}/registrations", events.ListRegistrations)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", events.CreateEvent)
			r.Patch("/{id}", events.UpdateEvent)
			r.Delete("/{id}", events.DeleteEvent)
			r.Post("/{id}/register", events.Register)
			r.Delete("/{id}/register", events.Unregister)
		})
	})

	r.Route("/registrations", func(r chi.Router) {
		r.Get("/exists", regs.Exists)
		r.Get("/{id}", regs.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate, auth.RequireAdmin)
			r.Get("/", regs.ListAll)
			r.Patch("/{id}", regs.Update)
			r.Delete("/{id}", regs.Remove)
		})
	})

	return r
}
