package models

import (
	"time"
)

// Stock status values derived from quantity and threshold
const (
	StockIn  = "in_stock"
	StockLow = "low_stock"
	StockOut = "out_of_stock"
)

// InventoryItem represents a consumable stock unit (detergent, hangers, ...)
type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Category  string    `gorm:"index" json:"category"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	MinStock  int       `gorm:"not null;default:0" json:"min_stock"`
	Unit      string    `json:"unit"`
	UnitCost  float64   `gorm:"not null;default:0" json:"unit_cost"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the InventoryItem model
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// StockStatus derives the item's stock level. It is never stored, so it can
// not drift out of sync with the quantity.
func (i *InventoryItem) StockStatus() string {
	switch {
	case i.Quantity == 0:
		return StockOut
	case i.Quantity <= i.MinStock:
		return StockLow
	default:
		return StockIn
	}
}
