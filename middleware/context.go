package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hogent/event-ticket-manager/auth"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for the resolved session
	SessionKey contextKey = "session"

	// OwnerIDKey is the context key for the resolved ownership parameter
	OwnerIDKey contextKey = "owner_id"
)

// GetRequestIDFromContext retrieves the request ID from context, falling
// back to the id set by chi's RequestID middleware.
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetSessionFromContext returns the resolved session. A request that never
// passed through the resolver is Anonymous.
func GetSessionFromContext(ctx context.Context) auth.Session {
	if val := ctx.Value(SessionKey); val != nil {
		if session, ok := val.(auth.Session); ok {
			return session
		}
	}
	return auth.Session{State: auth.Anonymous}
}

// WithSession adds the resolved session to the context
func WithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetPrincipalFromContext returns the authenticated principal or nil
func GetPrincipalFromContext(ctx context.Context) *auth.Principal {
	session := GetSessionFromContext(ctx)
	if session.State != auth.Authenticated {
		return nil
	}
	return session.Principal
}

// GetOwnerIDFromContext returns the owner id resolved by Authorize, with
// "me" already replaced by the caller's id.
func GetOwnerIDFromContext(ctx context.Context) (int64, bool) {
	if val := ctx.Value(OwnerIDKey); val != nil {
		if id, ok := val.(int64); ok {
			return id, true
		}
	}
	return 0, false
}

// WithOwnerID adds a resolved owner id to the context
func WithOwnerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, OwnerIDKey, id)
}
