package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

const locationColumns = `id, name, street, city, postal_code, country, created_at, updated_at`

// LocationRepository implements the repositories.LocationRepository interface
type LocationRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *DB, logger *zap.Logger) repositories.LocationRepository {
	return &LocationRepository{db: db, logger: logger}
}

func scanLocation(row rowScanner) (*models.Location, error) {
	l := &models.Location{}
	if err := row.Scan(&l.ID, &l.Name, &l.Street, &l.City, &l.PostalCode, &l.Country, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

// Create creates a new location
func (r *LocationRepository) Create(ctx context.Context, l *models.Location) error {
	query := `
		INSERT INTO locations (name, street, city, postal_code, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
	now := time.Now()
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, l.Name, l.Street, l.City, l.PostalCode, l.Country, now).Scan(&l.ID)
	if err != nil {
		return mapError("create location", err)
	}
	l.CreatedAt, l.UpdatedAt = now, now

	r.logger.Debug("location created", zap.Int64("id", l.ID))
	return nil
}

// GetByID retrieves a location by ID
func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`

	l, err := scanLocation(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get location %d", id), err)
	}
	return l, nil
}

// List retrieves all locations ordered by id
func (r *LocationRepository) List(ctx context.Context) ([]*models.Location, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY id`)
	if err != nil {
		return nil, mapError("list locations", err)
	}
	defer rows.Close()

	var out []*models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, mapError("scan location", err)
		}
		out = append(out, l)
	}
	return out, mapError("iterate locations", rows.Err())
}

// Update updates a location
func (r *LocationRepository) Update(ctx context.Context, l *models.Location) error {
	query := `
		UPDATE locations
		SET name = $1, street = $2, city = $3, postal_code = $4, country = $5, updated_at = $6
		WHERE id = $7
	`
	l.UpdatedAt = time.Now()
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, l.Name, l.Street, l.City, l.PostalCode, l.Country, l.UpdatedAt, l.ID)
	if err != nil {
		return mapError("update location", err)
	}
	return expectAffected("update location", res)
}

// Delete deletes a location
func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return mapError("delete location", err)
	}
	return expectAffected("delete location", res)
}
