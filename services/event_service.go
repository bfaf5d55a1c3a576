package services

import (
	"context"
	"errors"

	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// EventInput describes a new event
type EventInput struct {
	Name        string
	Date        string
	StartTime   string
	EndTime     string
	LocationID  int64
	CategoryIDs []int64
}

// EventChanges holds the fields an update may set. A nil CategoryIDs leaves
// the links alone; an empty slice clears them.
type EventChanges struct {
	Name        *string
	Date        *string
	StartTime   *string
	EndTime     *string
	LocationID  *int64
	CategoryIDs *[]int64
}

// EventService manages events and their category links
type EventService struct {
	events repositories.EventRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewEventService creates a new EventService
func NewEventService(events repositories.EventRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *EventService {
	return &EventService{events: events, txMgr: txMgr, logger: logger}
}

// List returns all events with location and categories
func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fromRepository(err, nil, nil)
	}
	if events == nil {
		return []*models.Event{}, nil
	}

	if err := s.attachCategories(ctx, events...); err != nil {
		return nil, err
	}
	return events, nil
}

// Get returns one event with location and categories
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrEventNotFound, nil)
	}
	if err := s.attachCategories(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Create stores the event and its category links in one transaction
func (s *EventService) Create(ctx context.Context, in EventInput) (*models.Event, error) {
	id, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (int64, error) {
		event := &models.Event{
			Name:       in.Name,
			Date:       in.Date,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			LocationID: in.LocationID,
		}
		if err := s.events.Create(ctx, event); err != nil {
			return 0, eventWriteError(err, ErrLocationNotFound)
		}
		if err := s.events.SetCategories(ctx, event.ID, lo.Uniq(in.CategoryIDs)); err != nil {
			return 0, eventWriteError(err, ErrCategoryNotFound)
		}
		return event.ID, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event created", zap.Int64("event_id", id))
	return s.Get(ctx, id)
}

// Update applies changes to the event and, when given, replaces its
// category links, all in one transaction
func (s *EventService) Update(ctx context.Context, id int64, changes EventChanges) (*models.Event, error) {
	err := WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		event, err := s.events.GetByID(ctx, id)
		if err != nil {
			return fromRepository(err, ErrEventNotFound, nil)
		}

		setString(&event.Name, changes.Name)
		setString(&event.Date, changes.Date)
		setString(&event.StartTime, changes.StartTime)
		setString(&event.EndTime, changes.EndTime)
		if changes.LocationID != nil {
			event.LocationID = *changes.LocationID
		}

		if err := s.events.Update(ctx, event); err != nil {
			return eventWriteError(err, ErrLocationNotFound)
		}
		if changes.CategoryIDs != nil {
			if err := s.events.SetCategories(ctx, id, lo.Uniq(*changes.CategoryIDs)); err != nil {
				return eventWriteError(err, ErrCategoryNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an event with its links and tickets
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return fromRepository(err, ErrEventNotFound, nil)
	}
	s.logger.Info("event deleted", zap.Int64("event_id", id))
	return nil
}

func (s *EventService) attachCategories(ctx context.Context, events ...*models.Event) error {
	ids := lo.Map(events, func(e *models.Event, _ int) int64 { return e.ID })

	byEvent, err := s.events.CategoriesFor(ctx, ids)
	if err != nil {
		return fromRepository(err, nil, nil)
	}
	for _, e := range events {
		e.Categories = lo.ValueOr(byEvent, e.ID, []*models.Category{})
	}
	return nil
}

// eventWriteError maps a foreign key failure onto the missing reference
func eventWriteError(err error, missingRef *DomainError) error {
	if errors.Is(err, repositories.ErrForeignKey) {
		return missingRef.Wrap(err)
	}
	return fromRepository(err, ErrEventNotFound, nil)
}
