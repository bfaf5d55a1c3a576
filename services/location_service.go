package services

import (
	"context"

	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

// LocationChanges holds the fields an update may set
type LocationChanges struct {
	Name       *string
	Street     *string
	City       *string
	PostalCode *string
	Country    *string
}

// LocationService manages venues
type LocationService struct {
	locations repositories.LocationRepository
	logger    *zap.Logger
}

// NewLocationService creates a new LocationService
func NewLocationService(locations repositories.LocationRepository, logger *zap.Logger) *LocationService {
	return &LocationService{locations: locations, logger: logger}
}

func (s *LocationService) List(ctx context.Context) ([]*models.Location, error) {
	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, fromRepository(err, nil, nil)
	}
	if locations == nil {
		locations = []*models.Location{}
	}
	return locations, nil
}

func (s *LocationService) Get(ctx context.Context, id int64) (*models.Location, error) {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrLocationNotFound, nil)
	}
	return location, nil
}

func (s *LocationService) Create(ctx context.Context, location *models.Location) (*models.Location, error) {
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, fromRepository(err, nil, nil)
	}
	return location, nil
}

func (s *LocationService) Update(ctx context.Context, id int64, changes LocationChanges) (*models.Location, error) {
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrLocationNotFound, nil)
	}

	setString(&location.Name, changes.Name)
	setString(&location.Street, changes.Street)
	setString(&location.City, changes.City)
	setString(&location.PostalCode, changes.PostalCode)
	setString(&location.Country, changes.Country)

	if err := s.locations.Update(ctx, location); err != nil {
		return nil, fromRepository(err, ErrLocationNotFound, nil)
	}
	return location, nil
}

// Delete removes a location and, by cascade, its events
func (s *LocationService) Delete(ctx context.Context, id int64) error {
	if err := s.locations.Delete(ctx, id); err != nil {
		return fromRepository(err, ErrLocationNotFound, nil)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
