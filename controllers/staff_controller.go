package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/middleware"
	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
)

// UpdateStatusRequest is the guided staff status-update payload. Version is
// the order version the actor observed; stale versions are rejected.
type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Version int    `json:"version" binding:"required"`
}

// ConfirmWeightRequest carries the weight staff measured at pickup
type ConfirmWeightRequest struct {
	ActualWeightKg float64 `json:"actual_weight_kg" binding:"required,gt=0"`
	Version        int     `json:"version" binding:"required"`
}

// MarkPaidRequest carries the order version the actor observed when
// collecting payment
type MarkPaidRequest struct {
	Version int `json:"version" binding:"required"`
}

// WalkInRequest registers an in-store customer together with their first order
type WalkInRequest struct {
	CustomerName  string                  `json:"customer_name" binding:"required"`
	CustomerEmail string                  `json:"customer_email" binding:"required,email"`
	CustomerPhone string                  `json:"customer_phone"`
	ServiceTypeID uint                    `json:"service_type_id" binding:"required"`
	AddOns        []AddOnSelectionRequest `json:"add_ons" binding:"omitempty,dive"`
	EstimatedWeightKg *float64            `json:"estimated_weight_kg" binding:"omitempty,gt=0"`
	Pieces        *int                    `json:"pieces" binding:"omitempty,gt=0"`
	Instructions  *string                 `json:"instructions"`
	DeliveryAddress string                `json:"delivery_address"`
}

// ListOrders handles GET /api/v1/staff/orders - lists all orders, optionally
// filtered by status
func ListOrders(c *gin.Context) {
	db := config.GetDB()
	var orders []models.Order
	query := db.Preload("Customer").Preload("ServiceType").Preload("AddOns.AddOn").
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

// UpdateOrderStatus handles POST /api/v1/staff/orders/:id/status - advances
// an order one step along the guided workflow. Transitions outside the
// allowed-successor table are rejected, not silently accepted.
func UpdateOrderStatus(c *gin.Context) {
	actor, err := middleware.CurrentUser(c)
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

	var req UpdateStatusRequest
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

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if req.Status == services.StatusCancelled {
		err = lifecycleService.Cancel(order, actor, req.Version)
	} else {
		err = lifecycleService.ApplyStatusTransition(order, req.Status, actor, req.Version)
	}
	if err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
		"allowed_next": services.AllowedNextStatuses(order.Status),
	})
}

// ConfirmWeight handles POST /api/v1/staff/orders/:id/weight - records the
// actual weight and recomputes the final total. The lifecycle status is not
// advanced; weight confirmation is orthogonal to it.
func ConfirmWeight(c *gin.Context) {
	actor, err := middleware.CurrentUser(c)
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

	var req ConfirmWeightRequest
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

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if err := lifecycleService.ConfirmActualWeight(order, req.ActualWeightKg, actor, req.Version); err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// AcknowledgeOrder handles POST /api/v1/staff/orders/:id/ack - marks a
// pending order as viewed, which stops its recurring staff reminder
func AcknowledgeOrder(c *gin.Context) {
	order, ok := findOrder(c)
	if !ok {
		return
	}

	if err := reminderRegistry.Acknowledge(order.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to acknowledge order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order acknowledged",
	})
}

// MarkOrderPaid handles POST /api/v1/staff/orders/:id/paid - flips the
// payment status once cash is collected on delivery. Like every other order
// mutation it is version-checked; repeating the call on a paid order is a
// no-op.
func MarkOrderPaid(c *gin.Context) {
	var req MarkPaidRequest
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

	order, ok := findOrder(c)
	if !ok {
		return
	}

	if order.PaymentStatus == models.PaymentPaid {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    order,
		})
		return
	}

	if order.Version != req.Version {
		respondLifecycleError(c, &services.ConflictError{ExpectedVersion: req.Version, ActualVersion: order.Version})
		return
	}

	db := config.GetDB()
	res := db.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentPaid,
			"version":        order.Version + 1,
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update payment status",
			},
		})
		return
	}
	if res.RowsAffected == 0 {
		respondLifecycleError(c, &services.ConflictError{ExpectedVersion: req.Version, ActualVersion: order.Version})
		return
	}
	order.PaymentStatus = models.PaymentPaid
	order.Version++

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CreateWalkInOrder handles POST /api/v1/staff/orders - in-store registration.
// It creates a not-yet-activated customer account with an invitation code and
// that customer's first order in one go.
func CreateWalkInOrder(c *gin.Context) {
	var req WalkInRequest
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

	total, needsQuote := services.OrderTotal(*service, req.EstimatedWeightKg, selections)

	inviteCode := uuid.NewString()[:8]
	customer := models.User{
		// The customer has no Auth0 account yet; the placeholder subject is
		// replaced when they claim the account with their invitation code.
		Auth0ID:    "walkin|" + uuid.NewString(),
		Name:       req.CustomerName,
		Email:      req.CustomerEmail,
		Phone:      req.CustomerPhone,
		Role:       models.RoleCustomer,
		Active:     true,
		Activated:  false,
		InviteCode: &inviteCode,
	}

	var order models.Order
	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}

		// Walk-in items are already in hand, no pickup trip and no delivery fee
		order = models.Order{
			Number:            uuid.NewString(),
			CustomerID:        customer.ID,
			ServiceTypeID:     service.ID,
			EstimatedWeightKg: req.EstimatedWeightKg,
			Pieces:            req.Pieces,
			Instructions:      req.Instructions,
			DeliveryAddress:   req.DeliveryAddress,
			EstimatedTotal:    total,
			Currency:          priceBook.Currency(),
			NeedsQuote:        needsQuote,
			Status:            services.StatusPending,
			PaymentStatus:     models.PaymentPending,
			WalkIn:            true,
			Version:           1,
		}
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
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_EXISTS",
					"message": "A user with this email already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to register walk-in order",
			},
		})
		return
	}

	notificationService.NotifyClientRegistration(&customer)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"order":       order,
			"customer":    customer,
			"invite_code": inviteCode,
		},
	})
}

// findOrder loads an order by path id with its relationships, answering 404
// when it does not exist
func findOrder(c *gin.Context) (*models.Order, bool) {
	db := config.GetDB()
	var order models.Order
	err := db.Preload("Customer").Preload("ServiceType").Preload("AddOns.AddOn").
		First(&order, "id = ?", c.Param("id")).Error
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
