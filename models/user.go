package models

import (
	"strings"
	"time"

	"github.com/hogent/event-ticket-manager/auth"
)

// User is an account. PasswordHash is never serialised.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password"`
	Role         auth.Role `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Tickets is only populated when a single user is loaded with details.
	Tickets []*Ticket `json:"tickets,omitempty" db:"-"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance with a normalised email
func NewUser(name, email, passwordHash string, role auth.Role) *User {
	now := time.Now()
	return &User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups and the
// unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// Roles returns the user's role as the set a Principal carries
func (u *User) Roles() []auth.Role {
	return []auth.Role{u.Role}
}
