package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/washline/washline-api/models"
)

// AddOnSelection pairs a catalog add-on with the quantity a customer picked
type AddOnSelection struct {
	AddOn    models.AddOn
	Quantity int
}

// ServiceCost computes the wash-service portion of an order total. Orders can
// be booked without a known weight (weight-deferred pricing): the service then
// contributes 0 and the final total is computed once staff weigh the items.
// The caller is responsible for rejecting negative weights at the form
// boundary.
func ServiceCost(service models.ServiceType, weightKg *float64) float64 {
	if weightKg == nil {
		return 0
	}
	return service.PricePerKg * *weightKg
}

// AddOnCost computes the cost of one add-on line. Per-kg add-ons bill
// PricePerKg per unit, flat add-ons bill BasePrice per unit. An add-on with
// neither price set contributes 0 and priced is false so the order can be
// flagged for a manual staff quote.
func AddOnCost(addOn models.AddOn, quantity int) (cost float64, priced bool) {
	switch {
	case addOn.PricePerKg != nil:
		return *addOn.PricePerKg * float64(quantity), true
	case addOn.BasePrice != nil:
		return *addOn.BasePrice * float64(quantity), true
	default:
		return 0, false
	}
}

// OrderTotal sums the service cost and every add-on line. Add-ons contribute
// even when the weight is unknown, so add-on-only bookings price normally.
// needsQuote is true when any selected add-on carries no price.
func OrderTotal(service models.ServiceType, weightKg *float64, selections []AddOnSelection) (total float64, needsQuote bool) {
	total = ServiceCost(service, weightKg)
	for _, sel := range selections {
		cost, priced := AddOnCost(sel.AddOn, sel.Quantity)
		total += cost
		if !priced {
			needsQuote = true
		}
	}
	return total, needsQuote
}

// PriceBook is the single currency-aware catalog lookup. Every component that
// needs a rate goes through one PriceBook instance instead of carrying its own
// price table.
type PriceBook struct {
	db       *gorm.DB
	currency string
}

// NewPriceBook creates a price book for one currency backed by the catalog
// tables
func NewPriceBook(db *gorm.DB, currency string) *PriceBook {
	return &PriceBook{db: db, currency: currency}
}

// Currency returns the currency code this price book quotes in
func (p *PriceBook) Currency() string {
	return p.currency
}

// ServiceByID looks up an active service type in this book's currency
func (p *PriceBook) ServiceByID(id uint) (*models.ServiceType, error) {
	var svc models.ServiceType
	err := p.db.Where("id = ? AND currency = ? AND active = ?", id, p.currency, true).First(&svc).Error
	if err != nil {
		return nil, fmt.Errorf("service type %d not available in %s: %w", id, p.currency, err)
	}
	return &svc, nil
}

// AddOnByID looks up an active add-on in this book's currency
func (p *PriceBook) AddOnByID(id uint) (*models.AddOn, error) {
	var addOn models.AddOn
	err := p.db.Where("id = ? AND currency = ? AND active = ?", id, p.currency, true).First(&addOn).Error
	if err != nil {
		return nil, fmt.Errorf("add-on %d not available in %s: %w", id, p.currency, err)
	}
	return &addOn, nil
}
