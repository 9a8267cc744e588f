package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
)

func performPhotoUpload(router *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("photo", filename)
	part.Write(content)
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadOrderPhoto(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")
	bob := createTestCustomer(t, db, "auth0|bob", "bob@example.com")

	mockPhotos := services.NewMockPhotoService()
	mockPhotos.SetAsMockForTesting()

	order := createStaffTestOrder(t, db, alice.ID, standard.ID, "pending")

	t.Run("stores the photo and records it against the order", func(t *testing.T) {
		router := customerRouter(http.MethodPost, "/orders/:id/photos", alice, UploadOrderPhoto)
		w := performPhotoUpload(router, fmt.Sprintf("/orders/%d/photos", order.ID), "garment.jpg", []byte("fake image data"))
		assert.Equal(t, http.StatusCreated, w.Code)

		response := parseResponse(t, w)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "orders/mock_garment.jpg", data["s3_key"])
		assert.NotEmpty(t, data["url"])

		var photo models.OrderPhoto
		assert.NoError(t, db.Where("order_id = ?", order.ID).First(&photo).Error)
		assert.True(t, mockPhotos.PhotoExists(photo.S3Key))
	})

	t.Run("rejects unsupported formats", func(t *testing.T) {
		router := customerRouter(http.MethodPost, "/orders/:id/photos", alice, UploadOrderPhoto)
		w := performPhotoUpload(router, fmt.Sprintf("/orders/%d/photos", order.ID), "garment.gif", []byte("gif data"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, parseResponse(t, w), "INVALID_FILE_FORMAT")
	})

	t.Run("missing file field", func(t *testing.T) {
		router := customerRouter(http.MethodPost, "/orders/:id/photos", alice, UploadOrderPhoto)
		w := performRequest(router, http.MethodPost, fmt.Sprintf("/orders/%d/photos", order.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, parseResponse(t, w), "VALIDATION_ERROR")
	})

	t.Run("someone else's order looks missing", func(t *testing.T) {
		router := customerRouter(http.MethodPost, "/orders/:id/photos", bob, UploadOrderPhoto)
		w := performPhotoUpload(router, fmt.Sprintf("/orders/%d/photos", order.ID), "garment.jpg", []byte("fake image data"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assertErrorCode(t, parseResponse(t, w), "ORDER_NOT_FOUND")
	})
}

func TestListOrderPhotos(t *testing.T) {
	db := setupControllerTest(t)
	standard, _, _ := seedTestCatalog(t, db)
	alice := createTestCustomer(t, db, "auth0|alice", "alice@example.com")

	mockPhotos := services.NewMockPhotoService()
	mockPhotos.SetAsMockForTesting()

	order := createStaffTestOrder(t, db, alice.ID, standard.ID, "pending")

	uploadRouter := customerRouter(http.MethodPost, "/orders/:id/photos", alice, UploadOrderPhoto)
	for _, name := range []string{"front.jpg", "back.png"} {
		w := performPhotoUpload(uploadRouter, fmt.Sprintf("/orders/%d/photos", order.ID), name, []byte("data"))
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	router := customerRouter(http.MethodGet, "/orders/:id/photos", alice, ListOrderPhotos)
	w := performRequest(router, http.MethodGet, fmt.Sprintf("/orders/%d/photos", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	photos := response["data"].([]interface{})
	assert.Len(t, photos, 2)
	for _, raw := range photos {
		photo := raw.(map[string]interface{})
		assert.NotEmpty(t, photo["url"], "every photo carries a presigned URL")
	}
}
