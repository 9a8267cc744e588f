package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/models"
	"github.com/washline/washline-api/services"
)

// DeliveryQuoteRequest asks for a delivery-fee quote before checkout. The
// coordinate is optional: manual address entry without GPS quotes zero.
type DeliveryQuoteRequest struct {
	PickupLat *float64 `json:"pickup_lat"`
	PickupLng *float64 `json:"pickup_lng"`
}

// GetCatalog handles GET /api/v1/catalog - the active services and add-ons in
// the configured currency, for the booking form
func GetCatalog(c *gin.Context) {
	cfg := config.GetConfig()
	db := config.GetDB()

	var serviceTypes []models.ServiceType
	if err := db.Where("currency = ? AND active = ?", cfg.CurrencyCode, true).
		Order("price_per_kg").Find(&serviceTypes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load catalog",
			},
		})
		return
	}

	var addOns []models.AddOn
	if err := db.Where("currency = ? AND active = ?", cfg.CurrencyCode, true).
		Order("name").Find(&addOns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load catalog",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"services": serviceTypes,
			"add_ons":  addOns,
			"currency": cfg.CurrencyCode,
		},
	})
}

// QuoteDelivery handles POST /api/v1/quotes/delivery - computes the
// distance-based pickup/delivery fee for a coordinate
func QuoteDelivery(c *gin.Context) {
	var req DeliveryQuoteRequest
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

	cfg := config.GetConfig()
	var pickup *services.Coordinate
	if req.PickupLat != nil {
		pickup = &services.Coordinate{Lat: *req.PickupLat, Lng: *req.PickupLng}
	}

	quote := services.ComputeDeliveryFee(pickup, services.Coordinate{
		Lat: cfg.OriginLatitude,
		Lng: cfg.OriginLongitude,
	}, cfg.DeliveryRatePerKm)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"distance_km": quote.DistanceKm,
			"billed_km":   quote.BilledKm,
			"fee":         quote.Fee,
			"currency":    cfg.CurrencyCode,
		},
	})
}
