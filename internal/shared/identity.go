package shared

// Role names a coarse permission group attached to each user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleFinance   Role = "finance"
	RoleInventory Role = "inventory"
	RoleUser      Role = "user"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleFinance, RoleInventory, RoleUser:
		return true
	}
	return false
}

// Identity is the authenticated caller attached to each request.
type Identity struct {
	UserID int64
	Email  string
	Name   string
	Role   Role
}

// Has reports whether the identity carries one of the given roles.
func (id Identity) Has(roles ...Role) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}
