package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/middleware"
	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
	"github.com/washline/washline-api/utils"
)

// UploadOrderPhoto handles POST /api/v1/orders/:id/photos - attaches a
// garment photo to one of the caller's orders. The file goes to S3; the
// response carries a presigned URL for immediate display.
func UploadOrderPhoto(c *gin.Context) {
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

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A photo file is required",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	photoKey, err := photoService.UploadPhoto(fileHeader)
	if err != nil {
		// Validation failures carry their own code; anything else is storage
		if uploadErr, isValidation := err.(*utils.FileUploadError); isValidation {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "Failed to store photo",
			},
		})
		return
	}

	photo := models.OrderPhoto{
		OrderID: order.ID,
		S3Key:   photoKey,
	}

	db := config.GetDB()
	if err := db.Create(&photo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record photo",
			},
		})
		return
	}

	if url, err := photoService.GetPhotoURL(photoKey); err == nil {
		photo.URL = url
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    photo,
	})
}

// ListOrderPhotos handles GET /api/v1/orders/:id/photos - lists an order's
// photos with presigned URLs
func ListOrderPhotos(c *gin.Context) {
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

	db := config.GetDB()
	var photos []models.OrderPhoto
	if err := db.Where("order_id = ?", order.ID).Find(&photos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list photos",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	for i := range photos {
		if url, err := photoService.GetPhotoURL(photos[i].S3Key); err == nil {
			photos[i].URL = url
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    photos,
	})
}
