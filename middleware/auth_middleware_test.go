package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hogent/event-ticket-manager/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockTokenVerifier is a mock implementation of auth.TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(token string) (*auth.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Principal), args.Error(1)
}

func TestSessionResolver_Resolve(t *testing.T) {
	logger := zap.NewNop()
	user := &auth.Principal{ID: 1, Email: "user@example.com", Roles: []auth.Role{auth.RoleUser}}

	t.Run("no header is anonymous", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		resolver := NewSessionResolver(verifier, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		session := resolver.Resolve(req)

		assert.Equal(t, auth.Anonymous, session.State)
		assert.Nil(t, session.Principal)
		verifier.AssertNotCalled(t, "Verify", mock.Anything)
	})

	t.Run("valid bearer token is authenticated", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", "good-token").Return(user, nil)
		resolver := NewSessionResolver(verifier, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		session := resolver.Resolve(req)

		assert.Equal(t, auth.Authenticated, session.State)
		assert.Equal(t, user, session.Principal)
		verifier.AssertExpectations(t)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", "good-token").Return(user, nil)
		resolver := NewSessionResolver(verifier, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer good-token")

		assert.Equal(t, auth.Authenticated, resolver.Resolve(req).State)
	})

	t.Run("invalid token is unauthenticated", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", "bad-token").Return(nil, auth.ErrInvalidToken)
		resolver := NewSessionResolver(verifier, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		session := resolver.Resolve(req)

		assert.Equal(t, auth.Unauthenticated, session.State)
		assert.Nil(t, session.Principal)
	})

	t.Run("non bearer scheme is unauthenticated", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		resolver := NewSessionResolver(verifier, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		assert.Equal(t, auth.Unauthenticated, resolver.Resolve(req).State)
		verifier.AssertNotCalled(t, "Verify", mock.Anything)
	})

	t.Run("empty bearer is unauthenticated", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		resolver := NewSessionResolver(verifier, logger)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer ")

		assert.Equal(t, auth.Unauthenticated, resolver.Resolve(req).State)
	})
}

func TestSessionResolver_MiddlewareNeverRejects(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("Verify", "bad-token").Return(nil, errors.New("boom"))
	resolver := NewSessionResolver(verifier, zap.NewNop())

	var seen auth.Session
	handler := resolver.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, auth.Unauthenticated, seen.State)
}

// newGuardedRouter wires resolver + guard the way routes.SetupRoutes does.
func newGuardedRouter(t *testing.T, policy auth.AccessPolicy, verifier auth.TokenVerifier) *chi.Mux {
	t.Helper()
	logger := zap.NewNop()
	table := NewRouteTable()
	guard := NewGuard(table, policy, logger)
	resolver := NewSessionResolver(verifier, logger)

	r := chi.NewRouter()
	r.Use(resolver.Middleware)

	echoOwner := func(w http.ResponseWriter, r *http.Request) {
		owner, ok := GetOwnerIDFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"owner": owner, "resolved": ok})
	}
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	register := func(method, pattern string, access auth.RouteAccess, h http.HandlerFunc) {
		table.Register(method, pattern, access)
		r.With(guard.Authorize).Method(method, pattern, h)
	}
	register(http.MethodGet, "/api/events", auth.Public(), ok)
	register(http.MethodPost, "/api/events", auth.Roles(auth.RoleAdmin), ok)
	register(http.MethodGet, "/api/users/{id}", auth.Roles(auth.RoleUser, auth.RoleAdmin).OwnedBy("id"), echoOwner)
	r.With(guard.Authorize).Get("/api/unregistered", ok)

	return r
}

func TestGuard_Authorize(t *testing.T) {
	user := &auth.Principal{ID: 1, Email: "user@example.com", Roles: []auth.Role{auth.RoleUser}}
	admin := &auth.Principal{ID: 9, Email: "admin@example.com", Roles: []auth.Role{auth.RoleAdmin}}

	verifier := new(MockTokenVerifier)
	verifier.On("Verify", "user-token").Return(user, nil)
	verifier.On("Verify", "admin-token").Return(admin, nil)
	verifier.On("Verify", "bad-token").Return(nil, auth.ErrInvalidToken)

	tests := []struct {
		name       string
		bypass     bool
		method     string
		path       string
		token      string
		wantStatus int
		wantOwner  float64
	}{
		{"public route anonymous", true, http.MethodGet, "/api/events", "", http.StatusOK, 0},
		{"public route with bad token", true, http.MethodGet, "/api/events", "bad-token", http.StatusOK, 0},
		{"admin route anonymous", true, http.MethodPost, "/api/events", "", http.StatusUnauthorized, 0},
		{"admin route bad token", true, http.MethodPost, "/api/events", "bad-token", http.StatusUnauthorized, 0},
		{"admin route as user", true, http.MethodPost, "/api/events", "user-token", http.StatusForbidden, 0},
		{"admin route as admin", true, http.MethodPost, "/api/events", "admin-token", http.StatusOK, 0},
		{"own profile by alias", true, http.MethodGet, "/api/users/me", "user-token", http.StatusOK, 1},
		{"own profile by id", true, http.MethodGet, "/api/users/1", "user-token", http.StatusOK, 1},
		{"other profile as user", true, http.MethodGet, "/api/users/2", "user-token", http.StatusForbidden, 0},
		{"other profile as admin", true, http.MethodGet, "/api/users/2", "admin-token", http.StatusOK, 2},
		{"other profile as admin without bypass", false, http.MethodGet, "/api/users/2", "admin-token", http.StatusForbidden, 0},
		{"malformed id", true, http.MethodGet, "/api/users/abc", "user-token", http.StatusBadRequest, 0},
		{"unregistered route is refused", true, http.MethodGet, "/api/unregistered", "admin-token", http.StatusForbidden, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newGuardedRouter(t, auth.AccessPolicy{AdminBypassOwnership: tt.bypass}, verifier)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantOwner != 0 {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, true, body["resolved"])
				assert.Equal(t, tt.wantOwner, body["owner"])
			}
		})
	}
}

func TestRouteTable_RegisterTwicePanics(t *testing.T) {
	table := NewRouteTable()
	table.Register(http.MethodGet, "/x", auth.Public())

	assert.Panics(t, func() { table.Register("get", "/x", auth.Public()) })
	assert.Equal(t, 1, table.Len())
}
