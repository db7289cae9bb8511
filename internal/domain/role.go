package domain

import "time"

// Well-known role names seeded on startup.
const (
	RoleNameUser    = "User"
	RoleNameSupport = "Support"
	RoleNameAdmin   = "Admin"
)

// Role groups a set of grant strings such as "tickets:create view" or "admin:*".
type Role struct {
	ID          string
	Name        string
	Description string
	Grants      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleOrder ranks roles from most to least privileged. Only one exists per installation.
type RoleOrder struct {
	ID        string
	Order     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Last returns the least privileged role id, or "" when the order is empty.
func (o *RoleOrder) Last() string {
	if o == nil || len(o.Order) == 0 {
		return ""
	}
	return o.Order[len(o.Order)-1]
}
