package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hogent/event-ticket-manager/models"
	"github.com/hogent/event-ticket-manager/repositories"
	"go.uber.org/zap"
)

const ticketColumns = `id, price, type, event_id, user_id, created_at, updated_at`

// TicketRepository implements the repositories.TicketRepository interface
type TicketRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *DB, logger *zap.Logger) repositories.TicketRepository {
	return &TicketRepository{db: db, logger: logger}
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	t := &models.Ticket{}
	if err := row.Scan(&t.ID, &t.Price, &t.Type, &t.EventID, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

// Create creates a ticket. Unknown event or user yields ErrForeignKey.
func (r *TicketRepository) Create(ctx context.Context, t *models.Ticket) error {
	query := `
		INSERT INTO tickets (price, type, event_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	now := time.Now()
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, t.Price, t.Type, t.EventID, t.UserID, now).Scan(&t.ID); err != nil {
		return mapError("create ticket", err)
	}
	t.CreatedAt, t.UpdatedAt = now, now

	r.logger.Debug("ticket created", zap.Int64("id", t.ID), zap.Int64("user_id", t.UserID))
	return nil
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get ticket %d", id), err)
	}
	return t, nil
}

// List retrieves all tickets
func (r *TicketRepository) List(ctx context.Context) ([]*models.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY id`)
}

// ListByUser retrieves the tickets owned by a user
func (r *TicketRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *TicketRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Ticket, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list tickets", err)
	}
	defer rows.Close()

	out := []*models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, mapError("scan ticket", err)
		}
		out = append(out, t)
	}
	return out, mapError("iterate tickets", rows.Err())
}

// Update updates price, type and event. The owner never changes.
func (r *TicketRepository) Update(ctx context.Context, t *models.Ticket) error {
	query := `
		UPDATE tickets
		SET price = $1, type = $2, event_id = $3, updated_at = $4
		WHERE id = $5
	`
	t.UpdatedAt = time.Now()
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, t.Price, t.Type, t.EventID, t.UpdatedAt, t.ID)
	if err != nil {
		return mapError("update ticket", err)
	}
	return expectAffected("update ticket", res)
}

// Delete deletes a ticket
func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return mapError("delete ticket", err)
	}
	return expectAffected("delete ticket", res)
}
