package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/middleware"
	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
)

// ForceStatusRequest is the audited admin override payload
type ForceStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Version int    `json:"version" binding:"required"`
}

// ForceOrderStatus handles POST /api/v1/admin/orders/:id/force-status - sets
// an arbitrary status outside the guided chain. Every use leaves a forced
// audit event; this exists for correcting data-entry mistakes, not for the
// day-to-day workflow.
func ForceOrderStatus(c *gin.Context) {
	admin, err := middleware.CurrentUser(c)
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

	var req ForceStatusRequest
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

	if err := lifecycleService.ForceStatus(order, req.Status, admin, req.Version); err != nil {
		respondLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// statusCount is one row of the per-status order breakdown
type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GetReportsSummary handles GET /api/v1/admin/reports/summary - order counts
// per status plus revenue figures for the admin dashboard
func GetReportsSummary(c *gin.Context) {
	db := config.GetDB()

	var counts []statusCount
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute order counts",
			},
		})
		return
	}

	// Collected revenue counts paid orders by their final total when staff
	// have weighed the items, estimated total otherwise
	var collected float64
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(COALESCE(final_total, estimated_total)), 0)").
		Where("payment_status = ?", models.PaymentPaid).
		Scan(&collected).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute revenue",
			},
		})
		return
	}

	var outstanding float64
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(COALESCE(final_total, estimated_total)), 0)").
		Where("payment_status = ? AND status NOT IN ?", models.PaymentPending,
			[]string{services.StatusCancelled}).
		Scan(&outstanding).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to compute outstanding revenue",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders_by_status":    counts,
			"revenue_collected":   collected,
			"revenue_outstanding": outstanding,
			"currency":            config.GetConfig().CurrencyCode,
		},
	})
}
