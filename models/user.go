package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values for User.Role. Roles are mutually exclusive buckets with no
// hierarchy: admin does not implicitly satisfy a staff-only requirement.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// User represents an authenticated principal (customer, staff member or admin)
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Auth0ID     string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name        string         `gorm:"not null" json:"name"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone       string         `json:"phone"`
	Role        string         `gorm:"not null;default:'customer'" json:"role"` // customer, staff or admin
	Active      bool           `gorm:"not null" json:"active"`
	Department  string         `json:"department,omitempty"`  // staff only
	Permissions string         `json:"permissions,omitempty"` // admin only, comma-separated
	InviteCode  *string        `gorm:"index" json:"invite_code,omitempty"` // set for staff-registered walk-in customers
	// No column default on purpose: gorm skips zero-value fields that carry a
	// default tag, which would store false bools as true on create
	Activated   bool           `gorm:"not null" json:"activated"` // false until a walk-in customer claims their account
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether r is one of the three known roles
func IsValidRole(r string) bool {
	return r == RoleCustomer || r == RoleStaff || r == RoleAdmin
}

// HomePath returns the role-appropriate landing route, used by the access
// controller when redirecting a caller away from a screen it may not open
func HomePath(role string) string {
	switch role {
	case RoleStaff:
		return "/staff/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/dashboard"
	}
}
