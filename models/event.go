package models

import "time"

// Event is a dated happening at a location. Date is YYYY-MM-DD and the
// times are HH:MM:SS wall-clock strings, as stored.
type Event struct {
	ID         int64       `json:"id" db:"id"`
	Name       string      `json:"name" db:"name"`
	Date       string      `json:"date" db:"date"`
	StartTime  string      `json:"start_time" db:"start_time"`
	EndTime    string      `json:"end_time" db:"end_time"`
	LocationID int64       `json:"location_id" db:"location_id"`
	Location   *Location   `json:"location,omitempty" db:"-"`
	Categories []*Category `json:"categories" db:"-"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Event model
func (Event) TableName() string {
	return "events"
}

// EventCategoriesTable links events to categories
const EventCategoriesTable = "event_categories"
