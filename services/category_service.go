package services

import (
	"context"
	"strings"

	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

// CategoryService manages event categories. Names are unique.
type CategoryService struct {
	categories repositories.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories repositories.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fromRepository(err, nil, nil)
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrCategoryNotFound, nil)
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: strings.TrimSpace(name)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fromRepository(err, nil, ErrDuplicateCategory)
	}
	return category, nil
}

func (s *CategoryService) Rename(ctx context.Context, id int64, name string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, ErrCategoryNotFound, nil)
	}

	category.Name = strings.TrimSpace(name)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fromRepository(err, ErrCategoryNotFound, ErrDuplicateCategory)
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return fromRepository(err, ErrCategoryNotFound, nil)
	}
	return nil
}
