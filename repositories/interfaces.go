package repositories

import (
	"context"
	"errors"

	"github.com/hogent/event-ticket-manager/models"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey is returned when a referenced row does not exist
	ErrForeignKey = errors.New("referenced record not found")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository is the credential store. Emails are stored normalised
// and are unique case-insensitively.
type UserRepository interface {
	// Create inserts the user and sets its ID. A taken email yields ErrDuplicate.
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail matches case-insensitively
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	List(ctx context.Context) ([]*models.User, error)

	// Update writes name and email only
	Update(ctx context.Context, user *models.User) error

	// UpdatePassword replaces the stored hash
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	Delete(ctx context.Context, id int64) error
}

// LocationRepository handles location data operations
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	List(ctx context.Context) ([]*models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository handles category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

// EventRepository handles events and their category links
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error

	// SetCategories replaces the event's category links
	SetCategories(ctx context.Context, eventID int64, categoryIDs []int64) error

	// CategoriesFor returns the categories linked to each of the given events
	CategoriesFor(ctx context.Context, eventIDs []int64) (map[int64][]*models.Category, error)
}

// TicketRepository handles ticket data operations
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	List(ctx context.Context) ([]*models.Ticket, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) error
	Delete(ctx context.Context, id int64) error
}

// Repositories holds all repository instances
type Repositories struct {
	Users      UserRepository
	Locations  LocationRepository
	Categories CategoryRepository
	Events     EventRepository
	Tickets    TicketRepository
}
