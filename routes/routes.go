package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hogent/event-ticket-manager/app"
	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/handlers"
	"github.com/hogent/event-ticket-manager/middleware"
	"github.com/hogent/event-ticket-manager/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(deps.Config.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           deps.Config.CORS.MaxAge,
	}))

	// Every request gets a session; the guard on each route decides what
	// it needs.
	r.Use(deps.SessionResolver.Middleware)

	rt := &router{mux: r, guard: deps.Guard}

	health := handlers.NewHealthHandler(deps.DB, deps.Logger)
	sessions := handlers.NewSessionHandler(deps.AuthService, deps.Logger)
	users := handlers.NewUserHandler(deps.AuthService, deps.UserService, deps.Logger)
	locations := handlers.NewLocationHandler(deps.LocationService, deps.Logger)
	categories := handlers.NewCategoryHandler(deps.CategoryService, deps.Logger)
	events := handlers.NewEventHandler(deps.EventService, deps.Logger)
	tickets := handlers.NewTicketHandler(deps.TicketService, deps.Logger)

	signedIn := auth.Roles(auth.RoleUser, auth.RoleAdmin)
	adminOnly := auth.Roles(auth.RoleAdmin)
	self := signedIn.OwnedBy("id")

	// Health check endpoints
	rt.handle(http.MethodGet, "/healthz", auth.Public(), health.HandleHealth)
	rt.handle(http.MethodGet, "/readyz", auth.Public(), health.HandleReadiness)

	// Sessions and registration
	rt.register(http.MethodPost, "/api/sessions", auth.Public(),
		deps.LoginThrottle.Middleware(http.HandlerFunc(sessions.HandleLogin)))
	rt.handle(http.MethodPost, "/api/users", auth.Public(), users.HandleRegister)

	// Users
	rt.handle(http.MethodGet, "/api/users", adminOnly, users.HandleList)
	rt.handle(http.MethodGet, "/api/users/{id}", self, users.HandleGet)
	rt.handle(http.MethodPatch, "/api/users/{id}", self, users.HandleUpdate)
	rt.handle(http.MethodPut, "/api/users/{id}/password", self, users.HandleChangePassword)
	rt.handle(http.MethodDelete, "/api/users/{id}", self, users.HandleDelete)

	// Locations
	rt.handle(http.MethodGet, "/api/locations", auth.Public(), locations.HandleList)
	rt.handle(http.MethodGet, "/api/locations/{id}", auth.Public(), locations.HandleGet)
	rt.handle(http.MethodPost, "/api/locations", adminOnly, locations.HandleCreate)
	rt.handle(http.MethodPut, "/api/locations/{id}", adminOnly, locations.HandleUpdate)
	rt.handle(http.MethodDelete, "/api/locations/{id}", adminOnly, locations.HandleDelete)

	// Categories
	rt.handle(http.MethodGet, "/api/categories", auth.Public(), categories.HandleList)
	rt.handle(http.MethodGet, "/api/categories/{id}", auth.Public(), categories.HandleGet)
	rt.handle(http.MethodPost, "/api/categories", adminOnly, categories.HandleCreate)
	rt.handle(http.MethodPut, "/api/categories/{id}", adminOnly, categories.HandleUpdate)
	rt.handle(http.MethodDelete, "/api/categories/{id}", adminOnly, categories.HandleDelete)

	// Events
	rt.handle(http.MethodGet, "/api/events", auth.Public(), events.HandleList)
	rt.handle(http.MethodGet, "/api/events/{id}", auth.Public(), events.HandleGet)
	rt.handle(http.MethodPost, "/api/events", adminOnly, events.HandleCreate)
	rt.handle(http.MethodPut, "/api/events/{id}", adminOnly, events.HandleUpdate)
	rt.handle(http.MethodDelete, "/api/events/{id}", adminOnly, events.HandleDelete)

	// Tickets: ownership is checked against the loaded ticket
	rt.handle(http.MethodGet, "/api/tickets", signedIn, tickets.HandleList)
	rt.handle(http.MethodGet, "/api/tickets/{id}", signedIn, tickets.HandleGet)
	rt.handle(http.MethodPost, "/api/tickets", signedIn, tickets.HandleCreate)
	rt.handle(http.MethodPut, "/api/tickets/{id}", signedIn, tickets.HandleUpdate)
	rt.handle(http.MethodDelete, "/api/tickets/{id}", signedIn, tickets.HandleDelete)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse{
			Error:   "method_not_allowed",
			Message: "method not allowed",
		})
	})

	deps.Logger.Debug("routes registered")
	return r
}

// router registers a route and its access metadata in one step, so no
// route can reach a handler without passing the guard.
type router struct {
	mux   chi.Router
	guard *middleware.Guard
}

func (rt *router) register(method, pattern string, access auth.RouteAccess, h http.Handler) {
	rt.guard.Routes().Register(method, pattern, access)
	rt.mux.With(rt.guard.Authorize).Method(method, pattern, h)
}

func (rt *router) handle(method, pattern string, access auth.RouteAccess, h http.HandlerFunc) {
	rt.register(method, pattern, access, h)
}
