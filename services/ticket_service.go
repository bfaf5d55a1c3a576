package services

import (
	"context"
	"errors"

	"github.com/hogent/event-ticket-manager/auth"
	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

// TicketInput describes a ticket purchase. The owner is always the caller.
type TicketInput struct {
	Price   float64
	Type    string
	EventID int64
}

// TicketChanges holds the fields an update may set
type TicketChanges struct {
	Price   *float64
	Type    *string
	EventID *int64
}

// TicketService manages tickets. Routes only require a signed-in user;
// ownership is checked here against the loaded row.
type TicketService struct {
	tickets repositories.TicketRepository
	events  repositories.EventRepository
	policy  auth.AccessPolicy
	logger  *zap.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(tickets repositories.TicketRepository, events repositories.EventRepository, policy auth.AccessPolicy, logger *zap.Logger) *TicketService {
	return &TicketService{
		tickets: tickets,
		events:  events,
		policy:  policy,
		logger:  logger,
	}
}

// List returns every ticket to an exempt admin and the caller's own
// tickets to everyone else
func (s *TicketService) List(ctx context.Context, principal *auth.Principal) ([]*models.Ticket, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}

	var (
		tickets []*models.Ticket
		err     error
	)
	if s.policy.Exempt(principal) {
		tickets, err = s.tickets.List(ctx)
	} else {
		tickets, err = s.tickets.ListByUser(ctx, principal.ID)
	}
	if err != nil {
		return nil, fromRepository(err, nil, nil)
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// Get returns one ticket with its event
func (s *TicketService) Get(ctx context.Context, principal *auth.Principal, id int64) (*models.Ticket, error) {
	ticket, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, fromRepository(err, ErrEventNotFound, nil)
	}
	ticket.Event = event
	return ticket, nil
}

// Create issues a ticket owned by the caller
func (s *TicketService) Create(ctx context.Context, principal *auth.Principal, in TicketInput) (*models.Ticket, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}

	ticket := &models.Ticket{
		Price:   in.Price,
		Type:    in.Type,
		EventID: in.EventID,
		UserID:  principal.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, ticketWriteError(err)
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("user_id", ticket.UserID))
	return ticket, nil
}

// Update changes price, type or event of a ticket the caller may access
func (s *TicketService) Update(ctx context.Context, principal *auth.Principal, id int64, changes TicketChanges) (*models.Ticket, error) {
	ticket, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if changes.Price != nil {
		ticket.Price = *changes.Price
	}
	setString(&ticket.Type, changes.Type)
	if changes.EventID != nil {
		ticket.EventID = *changes.EventID
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, ticketWriteError(err)
	}
	return ticket, nil
}

// Delete removes a ticket the caller may access
func (s *TicketService) Delete(ctx context.Context, principal *auth.Principal, id int64) error {
	if _, err := s.load(ctx, principal, id); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return fromRepository(err, ErrTicketNotFound, nil)
	}
	return nil
}

// load fetches a ticket and applies the ownership rule
func (s *TicketService) load(ctx context.Context, principal *auth.Principal, id int64) (*models.Ticket, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrTicketNotFound, nil)
	}

	if !s.policy.CanAccessOwned(principal, ticket.UserID) {
		s.logger.Warn("ticket access denied",
			zap.Int64("ticket_id", id),
			zap.Int64("user_id", principal.ID))
		return nil, ErrForbidden
	}
	return ticket, nil
}

func ticketWriteError(err error) error {
	if errors.Is(err, repositories.ErrForeignKey) {
		return ErrEventNotFound.Wrap(err)
	}
	return fromRepository(err, ErrTicketNotFound, nil)
}
