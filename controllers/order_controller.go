package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/middleware"
	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
)

// AddOnSelectionRequest is one add-on line in a checkout request
type AddOnSelectionRequest struct {
	AddOnID  uint `json:"add_on_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest represents the request body for the customer checkout flow
type CreateOrderRequest struct {
	ServiceTypeID     uint                    `json:"service_type_id" binding:"required"`
	AddOns            []AddOnSelectionRequest `json:"add_ons" binding:"omitempty,dive"`
	EstimatedWeightKg *float64                `json:"estimated_weight_kg" binding:"omitempty,gt=0"`
	Pieces            *int                    `json:"pieces" binding:"omitempty,gt=0"`
	Instructions      *string                 `json:"instructions"`
	PickupLat         *float64                `json:"pickup_lat"`
	PickupLng         *float64                `json:"pickup_lng"`
	PickupAddress     string                  `json:"pickup_address" binding:"required"`
	DeliveryAddress   string                  `json:"delivery_address" binding:"required"`
	PickupDate        *time.Time              `json:"pickup_date"`
	PickupWindow      string                  `json:"pickup_window"`
}

// CreateOrder handles POST /api/v1/orders - the customer checkout flow.
// Pricing and the delivery fee are computed here and persisted with the
// order; the currency is fixed at creation and never changes.
func CreateOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	// Parse request body
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	// A coordinate needs both halves; one without the other is a client bug
	if (req.PickupLat == nil) != (req.PickupLng == nil) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "pickup_lat and pickup_lng must be provided together",
			},
		})
		return
	}

	// Resolve the service and add-ons from the currency-aware catalog
	service, err := priceBook.ServiceByID(req.ServiceTypeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown or inactive service type",
			},
		})
		return
	}

	selections := make([]services.AddOnSelection, 0, len(req.AddOns))
	for _, line := range req.AddOns {
		addOn, err := priceBook.AddOnByID(line.AddOnID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Unknown or inactive add-on",
				},
			})
			return
		}
		selections = append(selections, services.AddOnSelection{AddOn: *addOn, Quantity: line.Quantity})
	}

	// Price the order and quote the delivery fee
	cfg := config.GetConfig()
	total, needsQuote := services.OrderTotal(*service, req.EstimatedWeightKg, selections)

	var pickup *services.Coordinate
	if req.PickupLat != nil {
		pickup = &services.Coordinate{Lat: *req.PickupLat, Lng: *req.PickupLng}
	}
	quote := services.ComputeDeliveryFee(pickup, services.Coordinate{
		Lat: cfg.OriginLatitude,
		Lng: cfg.OriginLongitude,
	}, cfg.DeliveryRatePerKm)

	order := models.Order{
		Number:            uuid.NewString(),
		CustomerID:        user.ID,
		ServiceTypeID:     service.ID,
		EstimatedWeightKg: req.EstimatedWeightKg,
		Pieces:            req.Pieces,
		Instructions:      req.Instructions,
		PickupLat:         req.PickupLat,
		PickupLng:         req.PickupLng,
		PickupAddress:     req.PickupAddress,
		DeliveryAddress:   req.DeliveryAddress,
		PickupDate:        req.PickupDate,
		PickupWindow:      req.PickupWindow,
		DistanceKm:        quote.DistanceKm,
		BilledKm:          quote.BilledKm,
		DeliveryFee:       quote.Fee,
		EstimatedTotal:    total + quote.Fee,
		Currency:          priceBook.Currency(),
		NeedsQuote:        needsQuote,
		Status:            services.StatusPending,
		PaymentStatus:     models.PaymentPending,
		Version:           1,
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, sel := range selections {
			cost, _ := services.AddOnCost(sel.AddOn, sel.Quantity)
			unitPrice := 0.0
			if sel.Quantity > 0 {
				unitPrice = cost / float64(sel.Quantity)
			}
			line := models.OrderAddOn{
				OrderID:   order.ID,
				AddOnID:   sel.AddOn.ID,
				Quantity:  sel.Quantity,
				UnitPrice: unitPrice,
				LineTotal: cost,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	// Tell staff and start the pending-order reminder
	notificationService.NotifyNewOrder(&order)
	reminderRegistry.Track(order.ID, order.Number)

	// Load relationships to return complete data
	if err := db.Preload("Customer").Preload("ServiceType").Preload("AddOns.AddOn").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListMyOrders handles GET /api/v1/orders - lists the caller's own orders
func ListMyOrders(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var orders []models.Order
	query := db.Where("customer_id = ?", user.ID).
		Preload("ServiceType").Preload("AddOns.AddOn").
		Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetMyOrder handles GET /api/v1/orders/:id - returns one of the caller's
// orders, including its status history and customer-facing status label
func GetMyOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	order, ok := findOwnedOrder(c, user.ID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
		"status_label": services.StatusLabel(order.Status),
		"allowed_next": services.AllowedNextStatuses(order.Status),
	})
}

// CancelMyOrder handles POST /api/v1/orders/:id/cancel - cancels one of the
// caller's own orders. Orders are never deleted, only moved to cancelled.
func CancelMyOrder(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	order, ok := findOwnedOrder(c, user.ID)
	if !ok {
		return
	}

	var req struct {
		Version int `json:"version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := lifecycleService.Cancel(order, user, req.Version); err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetMyInvoice handles GET /api/v1/orders/:id/invoice - assembles the
// print-ready invoice structure for one of the caller's orders. Rendering the
// PDF itself happens client-side.
func GetMyInvoice(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	order, ok := findOwnedOrder(c, user.ID)
	if !ok {
		return
	}

	invoice := services.AssembleInvoice(order, config.GetConfig())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    invoice,
	})
}

// findOwnedOrder loads an order by path id, answering 404 both for missing
// orders and for orders the caller does not own (ownership is not leaked)
func findOwnedOrder(c *gin.Context, customerID uint) (*models.Order, bool) {
	db := config.GetDB()
	var order models.Order
	err := db.Where("id = ? AND customer_id = ?", c.Param("id"), customerID).
		Preload("Customer").Preload("ServiceType").Preload("AddOns.AddOn").
		Preload("Events").
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return nil, false
	}
	return &order, true
}

// respondLifecycleError maps lifecycle service errors onto HTTP responses.
// Invalid transitions echo the currently valid options back so the actor can
// be re-shown what is possible.
func respondLifecycleError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *services.InvalidTransitionError:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": e.Error(),
			},
			"allowed_next": e.Allowed,
		})
	case *services.ConflictError:
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFLICT",
				"message": "The order was modified by someone else. Reload and try again.",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
	}
}
