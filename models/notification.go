package models

import (
	"time"
)

// Notification types
const (
	NotifNewOrder           = "new_order"
	NotifOrderStatusUpdate  = "order_status_update"
	NotifClientRegistration = "client_registration"
	NotifBroadcast          = "broadcast"
	NotifIndividual         = "individual"
	NotifReminder           = "reminder"
)

// Notification represents a message sent to a user or broadcast to everyone.
// Notifications are only ever mutated to flip their read/viewed flags.
type Notification struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Type         string     `gorm:"not null;index" json:"type"`
	Title        string     `gorm:"not null" json:"title"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	TargetUserID *uint      `gorm:"index" json:"target_user_id"` // nil means broadcast
	TargetUser   *User      `gorm:"foreignKey:TargetUserID" json:"-"`
	Priority     int        `gorm:"not null;default:0" json:"priority"`
	Read         bool       `gorm:"not null;default:false" json:"read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	Viewed       bool       `gorm:"not null;default:false" json:"viewed"`
	ViewedAt     *time.Time `json:"viewed_at,omitempty"`
	OrderID      *uint      `gorm:"index" json:"order_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
