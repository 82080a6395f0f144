package rolereq

import "time"

// Status tracks the lifecycle of a role request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// RoleRequest asks an administrator to grant the user a new role.
// UserName and UserEmail are joined in for the admin listing.
type RoleRequest struct {
	ID            int64
	UserID        int64
	UserName      string
	UserEmail     string
	RequestedRole string
	Message       string
	Status        Status
	DecidedBy     *int64
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
