package services

import (
	"context"

	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

// UserChanges holds the profile fields a PATCH may touch. Password and role
// are deliberately absent.
type UserChanges struct {
	Name  *string
	Email *string
}

// UserService manages accounts after registration
type UserService struct {
	users   repositories.UserRepository
	tickets repositories.TicketRepository
	hasher  auth.PasswordHasher
	logger  *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, tickets repositories.TicketRepository, hasher auth.PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{
		users:   users,
		tickets: tickets,
		hasher:  hasher,
		logger:  logger,
	}
}

// List returns every account
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fromRepository(err, nil, nil)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// Get returns one account together with its tickets
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrUserNotFound, nil)
	}

	tickets, err := s.tickets.ListByUser(ctx, id)
	if err != nil {
		return nil, fromRepository(err, nil, nil)
	}
	user.Tickets = tickets
	return user, nil
}

// Update applies profile changes. A taken email yields ErrDuplicateEmail.
func (s *UserService) Update(ctx context.Context, id int64, changes UserChanges) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrUserNotFound, nil)
	}

	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.Email != nil {
		user.Email = models.NormalizeEmail(*changes.Email)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fromRepository(err, ErrUserNotFound, ErrDuplicateEmail)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fromRepository(err, ErrUserNotFound, nil)
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return WrapInternal("failed to hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return fromRepository(err, ErrUserNotFound, nil)
	}

	s.logger.Info("password changed", zap.Int64("user_id", id))
	return nil
}

// Delete removes an account; its tickets go with it
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fromRepository(err, ErrUserNotFound, nil)
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}
