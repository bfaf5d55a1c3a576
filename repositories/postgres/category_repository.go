package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

// CategoryRepository implements the repositories.CategoryRepository interface
type CategoryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB, logger *zap.Logger) repositories.CategoryRepository {
	return &CategoryRepository{db: db, logger: logger}
}

// Create creates a new category; a taken name yields ErrDuplicate
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, created_at, updated_at)
		VALUES ($1, $2, $2)
		RETURNING id
	`
	now := time.Now()
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, c.Name, now).Scan(&c.ID); err != nil {
		return mapError("create category", err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1`

	c := &models.Category{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get category %d", id), err)
	}
	return c, nil
}

// List retrieves all categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()

	var out []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, mapError("scan category", err)
		}
		out = append(out, c)
	}
	return out, mapError("iterate categories", rows.Err())
}

// Update renames a category
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now()
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE categories SET name = $1, updated_at = $2 WHERE id = $3`, c.Name, c.UpdatedAt, c.ID)
	if err != nil {
		return mapError("update category", err)
	}
	return expectAffected("update category", res)
}

// Delete deletes a category
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError("delete category", err)
	}
	return expectAffected("delete category", res)
}
