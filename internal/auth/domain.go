package auth

import (
	"time"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// User is an account row. PasswordHash never leaves this package.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         shared.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity converts the user into the request-scoped identity.
func (u User) Identity() shared.Identity {
	return shared.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// RegisterInput carries the fields for account creation.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}
