package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/utils"
	"go.uber.org/zap"
)

// SessionResolver turns the Authorization header into an auth.Session.
type SessionResolver struct {
	verifier auth.TokenVerifier
	logger   *zap.Logger
}

// NewSessionResolver creates a new SessionResolver
func NewSessionResolver(verifier auth.TokenVerifier, logger *zap.Logger) *SessionResolver {
	return &SessionResolver{
		verifier: verifier,
		logger:   logger,
	}
}

// Resolve inspects the request headers only. No credential yields
// Anonymous; a rejected credential yields Unauthenticated.
func (s *SessionResolver) Resolve(r *http.Request) auth.Session {
	token, present := extractBearerToken(r)
	if !present {
		return auth.Session{State: auth.Anonymous}
	}
	if token == "" {
		return auth.Session{State: auth.Unauthenticated}
	}

	principal, err := s.verifier.Verify(token)
	if err != nil {
		return auth.Session{State: auth.Unauthenticated}
	}
	return auth.Session{State: auth.Authenticated, Principal: principal}
}

// Middleware resolves the session and stores it in the request context.
// It never rejects a request; that is the guard's job.
func (s *SessionResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := s.Resolve(r)

		switch session.State {
		case auth.Unauthenticated:
			s.logger.Warn("rejected bearer token",
				zap.String("request_id", GetRequestIDFromContext(ctx)))
		case auth.Authenticated:
			s.logger.Debug("authentication successful",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Int64("sub", session.Principal.ID))
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, session)))
	})
}

// RouteTable maps a route identity (method + chi pattern) to its access
// metadata. It is filled while routes are registered and read-only after.
type RouteTable struct {
	routes map[string]auth.RouteAccess
}

// NewRouteTable creates an empty RouteTable
func NewRouteTable() *RouteTable {
	return &RouteTable{routes: make(map[string]auth.RouteAccess)}
}

func routeKey(method, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}

// Register attaches access to a route. Registering the same route twice
// is a programming error.
func (t *RouteTable) Register(method, pattern string, access auth.RouteAccess) {
	key := routeKey(method, pattern)
	if _, exists := t.routes[key]; exists {
		panic(fmt.Sprintf("route %s registered twice", key))
	}
	t.routes[key] = access
}

// Lookup returns the metadata registered for a route.
func (t *RouteTable) Lookup(method, pattern string) (auth.RouteAccess, bool) {
	access, ok := t.routes[routeKey(method, pattern)]
	return access, ok
}

// Len returns the number of registered routes
func (t *RouteTable) Len() int {
	return len(t.routes)
}

// Guard evaluates the access policy for the matched route.
type Guard struct {
	routes *RouteTable
	policy auth.AccessPolicy
	logger *zap.Logger
}

// NewGuard creates a new Guard
func NewGuard(routes *RouteTable, policy auth.AccessPolicy, logger *zap.Logger) *Guard {
	return &Guard{
		routes: routes,
		policy: policy,
		logger: logger,
	}
}

// Routes returns the table the guard reads from
func (g *Guard) Routes() *RouteTable {
	return g.routes
}

// Authorize must run after chi has matched the route so the pattern is
// known. Routes missing from the table are refused.
func (g *Guard) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		pattern := ""
		if rctx := chi.RouteContext(ctx); rctx != nil {
			pattern = rctx.RoutePattern()
		}

		access, ok := g.routes.Lookup(r.Method, pattern)
		if !ok {
			g.logger.Error("route has no access metadata",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("pattern", pattern))
			_ = utils.WriteForbidden(w, "")
			return
		}

		var ownerValue string
		if access.OwnerParam != "" {
			ownerValue = chi.URLParam(r, access.OwnerParam)
		}

		session := GetSessionFromContext(ctx)
		decision := g.policy.Decide(access, session, ownerValue)

		switch {
		case errors.Is(decision.Err, auth.ErrUnauthenticated):
			g.logger.Warn("unauthenticated request",
				zap.String("request_id", requestID),
				zap.String("pattern", pattern),
				zap.Stringer("session", session.State))
			_ = utils.WriteUnauthorized(w, "")
			return
		case errors.Is(decision.Err, auth.ErrForbidden):
			g.logger.Warn("access denied",
				zap.String("request_id", requestID),
				zap.String("pattern", pattern),
				zap.Int64("sub", session.Principal.ID))
			_ = utils.WriteForbidden(w, "")
			return
		case errors.Is(decision.Err, auth.ErrInvalidOwnerRef):
			_ = utils.WriteBadRequest(w, fmt.Sprintf("Invalid %s", access.OwnerParam), nil)
			return
		case decision.Err != nil:
			g.logger.Error("authorization failed",
				zap.String("request_id", requestID),
				zap.Error(decision.Err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		if access.OwnerParam != "" {
			ctx = WithOwnerID(ctx, decision.OwnerID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the Bearer token from the Authorization
// header. present is false only when the header is missing entirely.
func extractBearerToken(r *http.Request) (token string, present bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", true
	}

	return strings.TrimSpace(parts[1]), true
}
