package models

import (
	"time"
)

// ServiceType is a wash service priced per kilogram (e.g. Standard, Express)
type ServiceType struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"not null" json:"name"`
	PricePerKg float64   `gorm:"not null" json:"price_per_kg"`
	Currency   string    `gorm:"not null" json:"currency"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ServiceType model
func (ServiceType) TableName() string {
	return "service_types"
}

// AddOn is an optional priced service line attached to an order independent of
// the main wash service. An add-on is priced either per kilogram or flat per
// unit; one with neither price set needs a manual staff quote.
type AddOn struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"not null" json:"name"`
	PricePerKg *float64  `json:"price_per_kg"` // nullable, per-unit-weight pricing
	BasePrice  *float64  `json:"base_price"`   // nullable, flat per-unit pricing
	Currency   string    `gorm:"not null" json:"currency"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the AddOn model
func (AddOn) TableName() string {
	return "add_ons"
}
