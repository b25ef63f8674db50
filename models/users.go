package models

import "time"

// Roles known to the system. The JWT carries exactly one of these.
const (
	RoleSystemAdmin    = "system_admin"
	RoleSecondaryAdmin = "secondary_admin"
	RoleStaff          = "staff"
	RoleCustomer       = "customer"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255); not null" json:"name"`
	Email     string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255); not null" json:"-"`
	Role      string    `gorm:"type:varchar(50); not null;default:'customer'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdminRole reports whether a role may confirm or conclude reservations.
func IsAdminRole(role string) bool {
	return role == RoleSystemAdmin || role == RoleSecondaryAdmin
}
