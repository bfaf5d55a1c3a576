package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// dates and times come back as text so the API shape does not depend on
// the driver's time decoding
const eventSelect = `
	SELECT e.id, e.name, to_char(e.date, 'YYYY-MM-DD'), to_char(e.start_time, 'HH24:MI:SS'),
	       to_char(e.end_time, 'HH24:MI:SS'), e.location_id, e.created_at, e.updated_at,
	       l.id, l.name, l.street, l.city, l.postal_code, l.country, l.created_at, l.updated_at
	FROM events e
	JOIN locations l ON l.id = e.location_id
`

// EventRepository implements the repositories.EventRepository interface
type EventRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB, logger *zap.Logger) repositories.EventRepository {
	return &EventRepository{db: db, logger: logger}
}

func scanEvent(row rowScanner) (*models.Event, error) {
	e := &models.Event{Location: &models.Location{}}
	l := e.Location
	err := row.Scan(
		&e.ID, &e.Name, &e.Date, &e.StartTime, &e.EndTime, &e.LocationID, &e.CreatedAt, &e.UpdatedAt,
		&l.ID, &l.Name, &l.Street, &l.City, &l.PostalCode, &l.Country, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Categories = []*models.Category{}
	return e, nil
}

// Create inserts an event. An unknown location yields ErrForeignKey.
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (name, date, start_time, end_time, location_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`
	now := time.Now()
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query,
		e.Name, e.Date, e.StartTime, e.EndTime, e.LocationID, now,
	).Scan(&e.ID)
	if err != nil {
		return mapError("create event", err)
	}
	e.CreatedAt, e.UpdatedAt = now, now

	r.logger.Debug("event created", zap.Int64("id", e.ID))
	return nil
}

// GetByID retrieves an event with its location
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	e, err := scanEvent(GetExecutor(ctx, r.db).QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get event %d", id), err)
	}
	return e, nil
}

// List retrieves all events by date and start time
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, eventSelect+` ORDER BY e.date, e.start_time, e.id`)
	if err != nil {
		return nil, mapError("list events", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, mapError("scan event", err)
		}
		out = append(out, e)
	}
	return out, mapError("iterate events", rows.Err())
}

// Update updates an event's own columns
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, date = $2, start_time = $3, end_time = $4, location_id = $5, updated_at = $6
		WHERE id = $7
	`
	e.UpdatedAt = time.Now()
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		e.Name, e.Date, e.StartTime, e.EndTime, e.LocationID, e.UpdatedAt, e.ID)
	if err != nil {
		return mapError("update event", err)
	}
	return expectAffected("update event", res)
}

// Delete deletes an event; links and tickets cascade
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapError("delete event", err)
	}
	return expectAffected("delete event", res)
}

// SetCategories replaces the category links of an event. Run it inside a
// transaction together with the event write.
func (r *EventRepository) SetCategories(ctx context.Context, eventID int64, categoryIDs []int64) error {
	executor := GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, `DELETE FROM event_categories WHERE event_id = $1`, eventID); err != nil {
		return mapError("clear event categories", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO event_categories (event_id, category_id)
		SELECT $1, UNNEST($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	if _, err := executor.ExecContext(ctx, query, eventID, pq.Array(categoryIDs)); err != nil {
		return mapError("link event categories", err)
	}
	return nil
}

// CategoriesFor loads the categories of several events in one query
func (r *EventRepository) CategoriesFor(ctx context.Context, eventIDs []int64) (map[int64][]*models.Category, error) {
	out := make(map[int64][]*models.Category, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT ec.event_id, c.id, c.name, c.created_at, c.updated_at
		FROM event_categories ec
		JOIN categories c ON c.id = ec.category_id
		WHERE ec.event_id = ANY($1)
		ORDER BY c.name
	`
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, mapError("list event categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID int64
		c := &models.Category{}
		if err := rows.Scan(&eventID, &c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, mapError("scan event category", err)
		}
		out[eventID] = append(out[eventID], c)
	}
	return out, mapError("iterate event categories", rows.Err())
}
