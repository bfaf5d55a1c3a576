package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepository) {
	t.Helper()
	users := newMemUserRepository()
	svc, err := NewAuthService(users, testHasher(), testTokens(), zap.NewNop())
	require.NoError(t, err)
	return svc, users
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestAuthService(t)

	token, err := svc.Register(ctx, "Ann", "Ann@Example.com", "correct horse")
	require.NoError(t, err)

	principal, err := testTokens().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", principal.Email)
	assert.Equal(t, []auth.Role{auth.RoleUser}, principal.Roles)

	stored, err := users.GetByID(ctx, principal.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.Contains(t, stored.PasswordHash, "$argon2id$")

	token, err = svc.Login(ctx, "ANN@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAuthService_DuplicateEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(ctx, "Ann", "ann@example.com", "password-one")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Ann", "ANN@EXAMPLE.COM", "password-two")
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// the first account still logs in with its own password
	_, err = svc.Login(ctx, "ann@example.com", "password-one")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "ann@example.com", "password-two")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(ctx, "Ann", "ann@example.com", "correct horse")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "ann@example.com", "battery staple")
	_, unknownEmail := svc.Login(ctx, "bob@example.com", "correct horse")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, "The given email and password do not match", GetErrorMessage(unknownEmail))
	assert.True(t, IsUnauthorizedError(wrongPassword))
}

func TestAuthService_LoginVerifiesDummyHashForUnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	hasher := new(MockPasswordHasher)

	hasher.On("Hash", mock.Anything).Return("$dummy", nil).Once()
	svc, err := NewAuthService(users, hasher, testTokens(), zap.NewNop())
	require.NoError(t, err)

	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repositories.ErrNotFound)
	hasher.On("Verify", "secret", "$dummy").Return(false).Once()

	_, err = svc.Login(context.Background(), "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	hasher.AssertExpectations(t)
}

func TestAuthService_LoginStoreFailureIsInternal(t *testing.T) {
	users := new(MockUserRepository)
	svc, err := NewAuthService(users, testHasher(), testTokens(), zap.NewNop())
	require.NoError(t, err)

	users.On("GetByEmail", mock.Anything, "ann@example.com").Return(nil, errors.New("connection refused"))

	_, err = svc.Login(context.Background(), "ann@example.com", "secret")
	assert.True(t, IsInternalError(err))
	assert.False(t, IsUnauthorizedError(err))
}

func TestAuthService_HashFailurePropagates(t *testing.T) {
	users := new(MockUserRepository)
	hasher := new(MockPasswordHasher)

	hasher.On("Hash", mock.Anything).Return("$dummy", nil).Once()
	svc, err := NewAuthService(users, hasher, testTokens(), zap.NewNop())
	require.NoError(t, err)

	entropy := errors.New("entropy source unavailable")
	hasher.On("Hash", "correct horse").Return("", entropy)

	_, err = svc.Register(context.Background(), "Ann", "ann@example.com", "correct horse")
	assert.True(t, IsInternalError(err))
	assert.ErrorIs(t, err, entropy)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNewAuthService_FailsWhenHasherFails(t *testing.T) {
	hasher := new(MockPasswordHasher)
	hasher.On("Hash", mock.Anything).Return("", errors.New("no entropy"))

	_, err := NewAuthService(new(MockUserRepository), hasher, testTokens(), zap.NewNop())
	assert.True(t, IsInternalError(err))
}

func TestAuthService_CreateAccount(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestAuthService(t)

	admin, err := svc.CreateAccount(ctx, NewAccount{Name: "Root", Email: "Root@Example.com", Password: "very secret", Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)
	assert.Equal(t, "root@example.com", admin.Email)

	stored, err := users.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())

	_, err = svc.CreateAccount(ctx, NewAccount{Name: "X", Email: "x@example.com", Password: "very secret", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	token, err := svc.Login(ctx, "root@example.com", "very secret")
	require.NoError(t, err)
	principal, err := testTokens().Verify(token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())
}

