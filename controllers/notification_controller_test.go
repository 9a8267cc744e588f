package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/washline/washline-api/middleware"
	"github.com/washline/washline-api/models"
)

func TestListMyNotifications(t *testing.T) {
	db := setupControllerTest(t)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")
	bob := createTestCustomer(t, db, "auth0|bob", "bob@example.com")

	db.Create(&models.Notification{Type: models.NotifIndividual, Title: "For Alice", Message: "m", TargetUserID: &alice.ID})
	db.Create(&models.Notification{Type: models.NotifIndividual, Title: "For Bob", Message: "m", TargetUserID: &bob.ID})
	db.Create(&models.Notification{Type: models.NotifBroadcast, Title: "For everyone", Message: "m"})

	router := setupTestRouter()
	router.GET("/notifications",
		mockAuthMiddleware(alice.Auth0ID, "mock-token"),
		middleware.RequireRole(middleware.RequireNone),
		ListMyNotifications,
	)

	t.Run("own notifications plus broadcasts", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/notifications", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		notifications := response["data"].([]interface{})
		assert.Len(t, notifications, 2)
		for _, raw := range notifications {
			n := raw.(map[string]interface{})
			assert.NotEqual(t, "For Bob", n["title"])
		}
	})

	t.Run("limit query parameter", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/notifications?limit=1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		response := parseResponse(t, w)
		assert.Len(t, response["data"].([]interface{}), 1)
	})
}

func TestMarkNotificationRead(t *testing.T) {
	db := setupControllerTest(t)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")
	bob := createTestCustomer(t, db, "auth0|bob", "bob@example.com")

	notification := models.Notification{Type: models.NotifIndividual, Title: "For Alice", Message: "m", TargetUserID: &alice.ID}
	db.Create(&notification)

	t.Run("the target can mark it read", func(t *testing.T) {
		router := customerRouter(http.MethodPost, "/notifications/:id/read", alice, MarkNotificationRead)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/notifications/%d/read", notification.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var saved models.Notification
		db.First(&saved, notification.ID)
		assert.True(t, saved.Read)
	})

	t.Run("someone else's notification looks missing", func(t *testing.T) {
		router := customerRouter(http.MethodPost, "/notifications/:id/read", bob, MarkNotificationRead)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/notifications/%d/read", notification.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorCode(t, parseResponse(t, w), "NOTIFICATION_NOT_FOUND")
	})

	t.Run("a garbage id is rejected", func(t *testing.T) {
		router := customerRouter(http.MethodPost, "/notifications/:id/read", alice, MarkNotificationRead)
		w := performRequest(router, http.MethodPost, "/notifications/abc/read", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSendNotification(t *testing.T) {
	db := setupControllerTest(t)
	admin := createTestAdmin(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")

	t.Run("broadcast", func(t *testing.T) {
		router := adminRouter(http.MethodPost, "/admin/notifications", admin, SendNotification)
		w := performRequest(router, http.MethodPost, "/admin/notifications", map[string]interface{}{
			"title":    "Closed Friday",
			"message":  "We are closed for maintenance",
			"priority": 1,
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, models.NotifBroadcast, data["type"])
		assert.Nil(t, data["target_user_id"])
	})

	t.Run("individual", func(t *testing.T) {
		router := adminRouter(http.MethodPost, "/admin/notifications", admin, SendNotification)
		w := performRequest(router, http.MethodPost, "/admin/notifications", map[string]interface{}{
			"target_user_id": alice.ID,
			"title":          "Your quote is ready",
			"message":        "Check your order",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, models.NotifIndividual, data["type"])
		assert.Equal(t, float64(alice.ID), data["target_user_id"])
	})

	t.Run("missing title", func(t *testing.T) {
		router := adminRouter(http.MethodPost, "/admin/notifications", admin, SendNotification)
		w := performRequest(router, http.MethodPost, "/admin/notifications", map[string]interface{}{
			"message": "No title",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, parseResponse(t, w), "VALIDATION_ERROR")
	})

	t.Run("out-of-range priority", func(t *testing.T) {
		router := adminRouter(http.MethodPost, "/admin/notifications", admin, SendNotification)
		w := performRequest(router, http.MethodPost, "/admin/notifications", map[string]interface{}{
			"title":    "Urgent",
			"message":  "m",
			"priority": 9,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
