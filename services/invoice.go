package services

import (
	"time"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/models"
)

// Invoice is the flat, print-ready view of an order. The PDF renderer consumes
// this structure as-is; assembling it has no side effects.
type Invoice struct {
	Business      BusinessBlock `json:"business"`
	BillTo        BillToBlock   `json:"bill_to"`
	OrderNumber   string        `json:"order_number"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	VATRate       float64       `json:"vat_rate"`
	VATAmount     float64       `json:"vat_amount"`
	DeliveryFee   float64       `json:"delivery_fee"` // zero when no billable distance
	GrandTotal    float64       `json:"grand_total"`
	Currency      string        `json:"currency"`
	PaymentMethod string        `json:"payment_method"`
	PaymentStatus string        `json:"payment_status"`
	Status        string        `json:"status"`
	StatusLabel   string        `json:"status_label"`
	UpdatedAt     time.Time     `json:"updated_at"`
	IssuedAt      time.Time     `json:"issued_at"`
}

// BusinessBlock is the invoice header identifying the laundry
type BusinessBlock struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// BillToBlock identifies the paying customer
type BillToBlock struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// InvoiceLine is one priced row on the invoice
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitRate    float64 `json:"unit_rate"`
	LineTotal   float64 `json:"line_total"`
}

// AssembleInvoice flattens an order into its printable invoice. The service
// line bills the actual weight when staff have confirmed one, otherwise the
// estimated weight from booking. VAT applies to the service and add-on
// subtotal; the delivery fee is added after tax.
func AssembleInvoice(order *models.Order, cfg *config.Config) Invoice {
	lines := []InvoiceLine{}

	weight := 0.0
	if order.ActualWeightKg != nil {
		weight = *order.ActualWeightKg
	} else if order.EstimatedWeightKg != nil {
		weight = *order.EstimatedWeightKg
	}

	serviceTotal := order.ServiceType.PricePerKg * weight
	lines = append(lines, InvoiceLine{
		Description: order.ServiceType.Name,
		Quantity:    weight,
		UnitRate:    order.ServiceType.PricePerKg,
		LineTotal:   serviceTotal,
	})

	subtotal := serviceTotal
	for _, line := range order.AddOns {
		lines = append(lines, InvoiceLine{
			Description: line.AddOn.Name,
			Quantity:    float64(line.Quantity),
			UnitRate:    line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
		subtotal += line.LineTotal
	}

	vat := subtotal * cfg.VATRate

	deliveryFee := 0.0
	if order.BilledKm > 0 {
		deliveryFee = order.DeliveryFee
	}

	return Invoice{
		Business: BusinessBlock{
			Name:    cfg.BusinessName,
			Address: cfg.BusinessAddress,
			Phone:   cfg.BusinessPhone,
		},
		BillTo: BillToBlock{
			Name:    order.Customer.Name,
			Phone:   order.Customer.Phone,
			Email:   order.Customer.Email,
			Address: order.DeliveryAddress,
		},
		OrderNumber:   order.Number,
		Lines:         lines,
		Subtotal:      subtotal,
		VATRate:       cfg.VATRate,
		VATAmount:     vat,
		DeliveryFee:   deliveryFee,
		GrandTotal:    subtotal + vat + deliveryFee,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		StatusLabel:   StatusLabel(order.Status),
		UpdatedAt:     order.UpdatedAt,
		IssuedAt:      time.Now(),
	}
}
