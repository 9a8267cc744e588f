package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/washline/washline-api/middleware"
	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
)

func createTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	admin := models.User{
		Auth0ID:     "auth0|admin1",
		Name:        "Admin",
		Email:       "admin1@example.com",
		Role:        models.RoleAdmin,
		Active:      true,
		Permissions: "orders,users,inventory",
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return &admin
}

func adminRouter(method, path string, admin *models.User, handler gin.HandlerFunc) *gin.Engine {
	router := setupTestRouter()
	router.Handle(method, path,
		mockAuthMiddleware(admin.Auth0ID, "mock-token"),
		middleware.RequireRole(middleware.RequireAdmin),
		handler,
	)
	return router
}

func TestForceOrderStatus(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	admin := createTestAdmin(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")

	t.Run("sets a status outside the guided chain and audits it", func(t *testing.T) {
		order := createStaffTestOrder(t, db, alice.ID, standard.ID, services.StatusProcessing)

		router := adminRouter(http.MethodPost, "/admin/orders/:id/force-status", admin, ForceOrderStatus)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/force-status", order.ID), map[string]interface{}{
			"status":  "drying",
			"version": 1,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var saved models.Order
		db.First(&saved, order.ID)
		assert.Equal(t, services.StatusDrying, saved.Status)

		var event models.StatusEvent
		assert.NoError(t, db.Where("order_id = ?", order.ID).First(&event).Error)
		assert.True(t, event.Forced)
		assert.Equal(t, admin.ID, event.ActorID)
	})

	t.Run("rejects a status the system does not know", func(t *testing.T) {
		order := createStaffTestOrder(t, db, alice.ID, standard.ID, services.StatusPending)

		router := adminRouter(http.MethodPost, "/admin/orders/:id/force-status", admin, ForceOrderStatus)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/force-status", order.ID), map[string]interface{}{
			"status":  "teleported",
			"version": 1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assertErrorCode(t, parseResponse(t, w), "INVALID_TRANSITION")
	})

	t.Run("staff may not force statuses", func(t *testing.T) {
		staff := createTestStaff(t, db)
		order := createStaffTestOrder(t, db, alice.ID, standard.ID, services.StatusReady)

		router := setupTestRouter()
		router.POST("/admin/orders/:id/force-status",
			mockAuthMiddleware(staff.Auth0ID, "mock-token"),
			middleware.RequireRole(middleware.RequireAdmin),
			ForceOrderStatus,
		)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/admin/orders/%d/force-status", order.ID), map[string]interface{}{
			"status":  "delivered",
			"version": 1,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestGetReportsSummary(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	admin := createTestAdmin(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")

	finalTotal := 24000.0
	paid := models.Order{
		Number: "PAID-1", CustomerID: alice.ID, ServiceTypeID: standard.ID,
		Currency: "TZS", Status: services.StatusDelivered,
		PaymentStatus: models.PaymentPaid,
		EstimatedTotal: 15000, FinalTotal: &finalTotal, Version: 3,
	}
	db.Create(&paid)

	unpaid := models.Order{
		Number: "DUE-1", CustomerID: alice.ID, ServiceTypeID: standard.ID,
		Currency: "TZS", Status: services.StatusProcessing,
		PaymentStatus:  models.PaymentPending,
		EstimatedTotal: 15000, Version: 1,
	}
	db.Create(&unpaid)

	// Cancelled orders are not owed money
	cancelled := models.Order{
		Number: "CXL-1", CustomerID: alice.ID, ServiceTypeID: standard.ID,
		Currency: "TZS", Status: services.StatusCancelled,
		PaymentStatus:  models.PaymentPending,
		EstimatedTotal: 99999, Version: 2,
	}
	db.Create(&cancelled)

	router := adminRouter(http.MethodGet, "/admin/reports/summary", admin, GetReportsSummary)
	w := performRequest(router, http.MethodGet, "/admin/reports/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})

	// The paid order counts by its weighed final total, not the estimate
	assert.Equal(t, float64(24000), data["revenue_collected"])
	assert.Equal(t, float64(15000), data["revenue_outstanding"])
	assert.Equal(t, "TZS", data["currency"])

	counts := data["orders_by_status"].([]interface{})
	byStatus := make(map[string]float64, len(counts))
	for _, raw := range counts {
		row := raw.(map[string]interface{})
		byStatus[row["status"].(string)] = row["count"].(float64)
	}
	assert.Equal(t, float64(1), byStatus["delivered"])
	assert.Equal(t, float64(1), byStatus["processing"])
	assert.Equal(t, float64(1), byStatus["cancelled"])
}
