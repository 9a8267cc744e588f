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

func createTestCustomer(t *testing.T, db *gorm.DB, auth0ID, email string) *models.User {
	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Customer",
		Email:   email,
		Role:    models.RoleCustomer,
		Active:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}
	return &user
}

// customerRouter wires a route the way main does: token check, role gate, handler
func customerRouter(method, path string, user *models.User, handler gin.HandlerFunc) *gin.Engine {
	router := setupTestRouter()
	router.Handle(method, path,
		mockAuthMiddleware(user.Auth0ID, "mock-token"),
		middleware.RequireRole(middleware.RequireCustomer),
		handler,
	)
	return router
}

func TestCreateOrder(t *testing.T) {
	db := setupControllerTest(t)
	standard, suit, other := seedTestCatalog(t, db)
	customer := createTestCustomer(t, db, "auth0|customer1", "customer@example.com")
	staff := models.User{Auth0ID: "auth0|staff1", Name: "Staff", Email: "staff@example.com", Role: models.RoleStaff, Active: true}
	db.Create(&staff)

	tests := []struct {
		name           string
		user           *models.User
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully book a priced order with a delivery quote",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id":     standard.ID,
				"estimated_weight_kg": 3,
				"add_ons": []map[string]interface{}{
					{"add_on_id": suit.ID, "quantity": 1},
				},
				// ~4.3 km north of the configured origin
				"pickup_lat":       -6.7773,
				"pickup_lng":       39.2803,
				"pickup_address":   "45 Kariakoo Rd",
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "pending", data["status"])
				assert.Equal(t, "TZS", data["currency"])
				assert.Equal(t, float64(1), data["version"])
				assert.Equal(t, false, data["needs_quote"])
				// 3 kg * 5000 + 10000 suit + 5 km * 2000 delivery
				assert.Equal(t, float64(5), data["billed_km"])
				assert.Equal(t, float64(10000), data["delivery_fee"])
				assert.Equal(t, float64(35000), data["estimated_total"])
				assert.NotEmpty(t, data["number"])

				addOns := data["add_ons"].([]interface{})
				assert.Len(t, addOns, 1)
				line := addOns[0].(map[string]interface{})
				assert.Equal(t, float64(10000), line["line_total"])
			},
		},
		{
			name: "Weight-deferred booking without a coordinate",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id":  standard.ID,
				"pickup_address":   "45 Kariakoo Rd",
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				// No weight and no coordinate: nothing to bill yet
				assert.Equal(t, float64(0), data["estimated_total"])
				assert.Equal(t, float64(0), data["delivery_fee"])
				assert.Nil(t, data["estimated_weight_kg"])
			},
		},
		{
			name: "Unpriced add-on flags the order for a quote",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id":     standard.ID,
				"estimated_weight_kg": 2,
				"add_ons": []map[string]interface{}{
					{"add_on_id": other.ID, "quantity": 1},
				},
				"pickup_address":   "45 Kariakoo Rd",
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, true, data["needs_quote"])
				assert.Equal(t, float64(10000), data["estimated_total"])
			},
		},
		{
			name: "Fail with a lone latitude",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id":  standard.ID,
				"pickup_lat":       -6.7773,
				"pickup_address":   "45 Kariakoo Rd",
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with an unknown service type",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id":  9999,
				"pickup_address":   "45 Kariakoo Rd",
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with a zero add-on quantity",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id": standard.ID,
				"add_ons": []map[string]interface{}{
					{"add_on_id": suit.ID, "quantity": 0},
				},
				"pickup_address":   "45 Kariakoo Rd",
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with a negative weight",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id":     standard.ID,
				"estimated_weight_kg": -1,
				"pickup_address":      "45 Kariakoo Rd",
				"delivery_address":    "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail without a pickup address",
			user: customer,
			requestBody: map[string]interface{}{
				"service_type_id":  standard.ID,
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Staff cannot use the customer checkout",
			user: &staff,
			requestBody: map[string]interface{}{
				"service_type_id":  standard.ID,
				"pickup_address":   "45 Kariakoo Rd",
				"delivery_address": "45 Kariakoo Rd",
			},
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := customerRouter(http.MethodPost, "/orders", tt.user, CreateOrder)

			w := performRequest(router, http.MethodPost, "/orders", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code)

			response := parseResponse(t, w)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestCreateOrder_NotifiesStaffAndTracksReminder(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	customer := createTestCustomer(t, db, "auth0|customer1", "customer@example.com")

	router := customerRouter(http.MethodPost, "/orders", customer, CreateOrder)
	w := performRequest(router, http.MethodPost, "/orders", map[string]interface{}{
		"service_type_id":  standard.ID,
		"pickup_address":   "45 Kariakoo Rd",
		"delivery_address": "45 Kariakoo Rd",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var notification models.Notification
	assert.NoError(t, db.Where("type = ?", models.NotifNewOrder).First(&notification).Error)

	response := parseResponse(t, w)
	orderID := uint(response["data"].(map[string]interface{})["id"].(float64))
	assert.True(t, Reminders().Tracked(orderID))
}

func TestListMyOrders(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")
	bob := createTestCustomer(t, db, "auth0|bob", "bob@example.com")

	db.Create(&models.Order{Number: "A-1", CustomerID: alice.ID, ServiceTypeID: standard.ID, Currency: "TZS", Status: services.StatusPending, Version: 1})
	db.Create(&models.Order{Number: "A-2", CustomerID: alice.ID, ServiceTypeID: standard.ID, Currency: "TZS", Status: services.StatusDelivered, Version: 1})
	db.Create(&models.Order{Number: "B-1", CustomerID: bob.ID, ServiceTypeID: standard.ID, Currency: "TZS", Status: services.StatusPending, Version: 1})

	t.Run("only the caller's orders", func(t *testing.T) {
		router := customerRouter(http.MethodGet, "/orders", alice, ListMyOrders)
		w := performRequest(router, http.MethodGet, "/orders", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		orders := response["data"].([]interface{})
		assert.Len(t, orders, 2)
		for _, raw := range orders {
			order := raw.(map[string]interface{})
			assert.Equal(t, float64(alice.ID), order["customer_id"])
		}
	})

	t.Run("status filter", func(t *testing.T) {
		router := customerRouter(http.MethodGet, "/orders", alice, ListMyOrders)
		w := performRequest(router, http.MethodGet, "/orders?status=pending", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		assert.Len(t, response["data"].([]interface{}), 1)
	})
}

func TestGetMyOrder(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")
	bob := createTestCustomer(t, db, "auth0|bob", "bob@example.com")

	order := models.Order{Number: "A-1", CustomerID: alice.ID, ServiceTypeID: standard.ID, Currency: "TZS", Status: services.StatusProcessing, Version: 1}
	db.Create(&order)

	t.Run("returns the order with its label and next steps", func(t *testing.T) {
		router := customerRouter(http.MethodGet, "/orders/:id", alice, GetMyOrder)
		w := performRequest(router, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		assert.Equal(t, "Washing", response["status_label"])
		allowedNext := response["allowed_next"].([]interface{})
		assert.Equal(t, []interface{}{"ready"}, allowedNext)
	})

	t.Run("someone else's order looks like a missing order", func(t *testing.T) {
		router := customerRouter(http.MethodGet, "/orders/:id", bob, GetMyOrder)
		w := performRequest(router, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorCode(t, parseResponse(t, w), "ORDER_NOT_FOUND")
	})

	t.Run("missing order", func(t *testing.T) {
		router := customerRouter(http.MethodGet, "/orders/:id", alice, GetMyOrder)
		w := performRequest(router, http.MethodGet, "/orders/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCancelMyOrder(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")

	t.Run("cancels a pending order", func(t *testing.T) {
		order := models.Order{Number: "A-1", CustomerID: alice.ID, ServiceTypeID: standard.ID, Currency: "TZS", Status: services.StatusPending, Version: 1}
		db.Create(&order)

		router := customerRouter(http.MethodPost, "/orders/:id/cancel", alice, CancelMyOrder)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), map[string]interface{}{
			"version": 1,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var saved models.Order
		db.First(&saved, order.ID)
		assert.Equal(t, services.StatusCancelled, saved.Status)
		assert.Equal(t, 2, saved.Version)
	})

	t.Run("a stale version is a conflict", func(t *testing.T) {
		order := models.Order{Number: "A-2", CustomerID: alice.ID, ServiceTypeID: standard.ID, Currency: "TZS", Status: services.StatusPending, Version: 3}
		db.Create(&order)

		router := customerRouter(http.MethodPost, "/orders/:id/cancel", alice, CancelMyOrder)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), map[string]interface{}{
			"version": 1,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assertErrorCode(t, parseResponse(t, w), "CONFLICT")
	})

	t.Run("a delivered order cannot be cancelled", func(t *testing.T) {
		order := models.Order{Number: "A-3", CustomerID: alice.ID, ServiceTypeID: standard.ID, Currency: "TZS", Status: services.StatusDelivered, Version: 1}
		db.Create(&order)

		router := customerRouter(http.MethodPost, "/orders/:id/cancel", alice, CancelMyOrder)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), map[string]interface{}{
			"version": 1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		response := parseResponse(t, w)
		assertErrorCode(t, response, "INVALID_TRANSITION")
		assert.Empty(t, response["allowed_next"])
	})
}

func TestGetMyInvoice(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")

	actual := 4.0
	order := models.Order{
		Number:         "A-1",
		CustomerID:     alice.ID,
		ServiceTypeID:  standard.ID,
		ActualWeightKg: &actual,
		BilledKm:       5,
		DeliveryFee:    10000,
		Currency:       "TZS",
		Status:         services.StatusOutForDelivery,
		PaymentStatus:  models.PaymentPending,
		PaymentMethod:  "cash_on_delivery",
		Version:        2,
	}
	db.Create(&order)

	router := customerRouter(http.MethodGet, "/orders/:id/invoice", alice, GetMyInvoice)
	w := performRequest(router, http.MethodGet, fmt.Sprintf("/orders/%d/invoice", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})

	assert.Equal(t, "A-1", data["order_number"])
	business := data["business"].(map[string]interface{})
	assert.Equal(t, "Washline Laundry", business["name"])

	// 4 kg * 5000, 18% VAT, delivery after tax
	assert.Equal(t, float64(20000), data["subtotal"])
	assert.InDelta(t, 3600, data["vat_amount"].(float64), 1e-6)
	assert.Equal(t, float64(10000), data["delivery_fee"])
	assert.InDelta(t, 33600, data["grand_total"].(float64), 1e-6)
}
