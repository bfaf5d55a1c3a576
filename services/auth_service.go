package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

// NewAccount is the input for creating an account
type NewAccount struct {
	Name     string
	Email    string
	Password string
	Role     auth.Role
}

// AuthService logs users in and registers new accounts. It owns the only
// paths that read or write password hashes.
type AuthService struct {
	users  repositories.UserRepository
	hasher auth.PasswordHasher
	tokens auth.TokenIssuer
	logger *zap.Logger

	// dummyHash is verified against when the email is unknown so both
	// login outcomes do the same hashing work
	dummyHash string
}

// NewAuthService creates a new AuthService. It hashes a throwaway password
// once, so a broken entropy source fails startup instead of the first login.
func NewAuthService(users repositories.UserRepository, hasher auth.PasswordHasher, tokens auth.TokenIssuer, logger *zap.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, WrapInternal("failed to prepare password hasher", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return "", fromRepository(err, nil, nil)
		}
		s.hasher.Verify(password, s.dummyHash)
		return "", ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Debug("password mismatch", zap.Int64("user_id", user.ID))
		return "", ErrInvalidCredentials
	}

	return s.issue(user)
}

// Register creates a USER account and logs it in
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	user, err := s.CreateAccount(ctx, NewAccount{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     auth.RoleUser,
	})
	if err != nil {
		return "", err
	}
	return s.issue(user)
}

// CreateAccount hashes the password and stores the account with the given
// role. A taken email, in any letter case, yields ErrDuplicateEmail.
func (s *AuthService) CreateAccount(ctx context.Context, in NewAccount) (*models.User, error) {
	role, err := auth.ParseRole(string(in.Role))
	if err != nil {
		return nil, ErrInvalidRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(in.Name, in.Email, hash, role)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fromRepository(err, nil, ErrDuplicateEmail)
	}

	s.logger.Info("account created",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return user, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Roles())
	if err != nil {
		return "", WrapInternal("failed to issue token", err)
	}
	return token, nil
}
