package domain

import "time"

// Role determines what a user may do against the ledger.
// Maker mutations on governed entities are diverted into modification
// requests; checkers resolve them.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleMaker    Role = "MAKER"
	RoleChecker  Role = "CHECKER"
	RoleInvestor Role = "INVESTOR"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMaker, RoleChecker, RoleInvestor:
		return true
	}
	return false
}

// CanResolveRequests reports whether the role may approve or reject
// modification requests.
func (r Role) CanResolveRequests() bool {
	return r == RoleChecker || r == RoleAdmin
}

// User represents a back-office operator account.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
