package models

import "time"

// Ticket is owned by exactly one user
type Ticket struct {
	ID        int64     `json:"id" db:"id"`
	Price     float64   `json:"price" db:"price"`
	Type      string    `json:"type" db:"type"`
	EventID   int64     `json:"event_id" db:"event_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Event     *Event    `json:"event,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Ticket model
func (Ticket) TableName() string {
	return "tickets"
}

// OwnedBy reports whether userID owns the ticket
func (t *Ticket) OwnedBy(userID int64) bool {
	return t.UserID == userID
}
