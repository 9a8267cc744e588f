package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment status values for Order.PaymentStatus
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Order represents one laundry transaction in the system
type Order struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Number        string `gorm:"uniqueIndex;not null" json:"number"` // customer-facing order number
	CustomerID    uint   `gorm:"not null;index" json:"customer_id"`
	Customer      User   `gorm:"foreignKey:CustomerID" json:"customer"`
	ServiceTypeID uint   `gorm:"not null;index" json:"service_type_id"`
	ServiceType   ServiceType `gorm:"foreignKey:ServiceTypeID" json:"service_type"`
	AddOns        []OrderAddOn `gorm:"foreignKey:OrderID" json:"add_ons"`

	EstimatedWeightKg *float64 `json:"estimated_weight_kg"` // nullable, weight-deferred pricing
	ActualWeightKg    *float64 `json:"actual_weight_kg"`    // nullable, set by staff at pickup
	WeightConfirmed   bool     `gorm:"not null;default:false" json:"weight_confirmed"`
	Pieces            *int     `json:"pieces"`
	Instructions      *string  `gorm:"type:text" json:"instructions"`

	PickupLat       *float64 `json:"pickup_lat"` // nullable, manual address entry has no coordinate
	PickupLng       *float64 `json:"pickup_lng"`
	PickupAddress   string   `json:"pickup_address"`
	DeliveryAddress string   `json:"delivery_address"`
	PickupDate      *time.Time `json:"pickup_date"`
	PickupWindow    string     `json:"pickup_window"` // e.g. "09:00-12:00"

	DistanceKm  float64 `gorm:"not null;default:0" json:"distance_km"`
	BilledKm    int     `gorm:"not null;default:0" json:"billed_km"` // DistanceKm rounded up
	DeliveryFee float64 `gorm:"not null;default:0" json:"delivery_fee"`

	EstimatedTotal float64  `gorm:"not null;default:0" json:"estimated_total"`
	FinalTotal     *float64 `json:"final_total"` // set once actual weight is known
	Currency       string   `gorm:"not null" json:"currency"` // fixed at creation, never changes
	NeedsQuote     bool     `gorm:"not null;default:false" json:"needs_quote"` // unpriced add-on needs staff follow-up

	Status        string `gorm:"not null;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"not null;default:'pending'" json:"payment_status"` // pending or paid
	PaymentMethod string `gorm:"not null;default:'cash_on_delivery'" json:"payment_method"`
	WalkIn        bool   `gorm:"not null;default:false" json:"walk_in"` // registered in-store by staff

	AssignedStaffID *uint `gorm:"index" json:"assigned_staff_id"` // nullable, set on first status update
	AssignedStaff   *User `gorm:"foreignKey:AssignedStaffID" json:"assigned_staff,omitempty"`

	// Acknowledged is flipped when staff first views the order; pending-order
	// reminders stop once it is set.
	Acknowledged bool `gorm:"not null;default:false" json:"acknowledged"`

	// Version is bumped on every mutation; callers submit the version they
	// observed and stale writes are rejected instead of silently overwritten.
	Version int `gorm:"not null;default:1" json:"version"`

	Photos []OrderPhoto  `gorm:"foreignKey:OrderID" json:"photos"`
	Events []StatusEvent `gorm:"foreignKey:OrderID" json:"events,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderAddOn is one priced add-on line attached to an order
type OrderAddOn struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	AddOnID   uint    `gorm:"not null" json:"add_on_id"`
	AddOn     AddOn   `gorm:"foreignKey:AddOnID" json:"add_on"`
	Quantity  int     `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"` // price captured at booking time
	LineTotal float64 `gorm:"not null" json:"line_total"`
}

// TableName specifies the table name for the OrderAddOn model
func (OrderAddOn) TableName() string {
	return "order_add_ons"
}

// OrderPhoto is a garment photo attached to an order, stored in S3
type OrderPhoto struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	S3Key     string    `gorm:"not null" json:"s3_key"`
	URL       string    `gorm:"-" json:"url,omitempty"` // computed presigned URL
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderPhoto model
func (OrderPhoto) TableName() string {
	return "order_photos"
}

// StatusEvent records one lifecycle transition: who moved the order, to what
// status and when. Forced is true for audited admin overrides that bypass the
// normal successor table.
type StatusEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    string    `gorm:"not null" json:"status"`
	ActorID   uint      `gorm:"not null" json:"actor_id"`
	Actor     User      `gorm:"foreignKey:ActorID" json:"actor"`
	Forced    bool      `gorm:"not null;default:false" json:"forced"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the StatusEvent model
func (StatusEvent) TableName() string {
	return "status_events"
}
