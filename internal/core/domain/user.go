package domain

import "time"

// Role defines what an owner may do through the API.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

var roleLevel = map[Role]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// IsValid checks if the role is a recognized system role.
func (r Role) IsValid() bool {
	_, ok := roleLevel[r]
	return ok
}

// Allows reports whether r grants at least the required role.
func (r Role) Allows(required Role) bool {
	return r.IsValid() && roleLevel[r] >= roleLevel[required]
}

// User is the identity that owns devices and alerts. User.ID is the
// ownerId of every record the engine writes on the user's behalf.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
