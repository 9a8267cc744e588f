package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/models"
)

// InventoryItemRequest is the create/update payload for a stock item
type InventoryItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	Quantity *int    `json:"quantity" binding:"required,gte=0"`
	MinStock *int    `json:"min_stock" binding:"required,gte=0"`
	Unit     string  `json:"unit"`
	UnitCost float64 `json:"unit_cost" binding:"gte=0"`
}

// inventoryItemView pairs an item with its derived stock status
type inventoryItemView struct {
	models.InventoryItem
	StockStatus string `json:"stock_status"`
}

// ListInventory handles GET /api/v1/admin/inventory - lists all stock items
// with their derived stock status
func ListInventory(c *gin.Context) {
	db := config.GetDB()
	var items []models.InventoryItem
	query := db.Order("name")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list inventory",
			},
		})
		return
	}

	views := make([]inventoryItemView, 0, len(items))
	for _, item := range items {
		views = append(views, inventoryItemView{InventoryItem: item, StockStatus: item.StockStatus()})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
	})
}

// CreateInventoryItem handles POST /api/v1/admin/inventory
func CreateInventoryItem(c *gin.Context) {
	var req InventoryItemRequest
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

	item := models.InventoryItem{
		Name:     req.Name,
		Category: req.Category,
		Quantity: *req.Quantity,
		MinStock: *req.MinStock,
		Unit:     req.Unit,
		UnitCost: req.UnitCost,
	}

	db := config.GetDB()
	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create inventory item",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    inventoryItemView{InventoryItem: item, StockStatus: item.StockStatus()},
	})
}

// UpdateInventoryItem handles PUT /api/v1/admin/inventory/:id
func UpdateInventoryItem(c *gin.Context) {
	var req InventoryItemRequest
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

	db := config.GetDB()
	var item models.InventoryItem
	if err := db.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ITEM_NOT_FOUND",
				"message": "Inventory item not found",
			},
		})
		return
	}

	item.Name = req.Name
	item.Category = req.Category
	item.Quantity = *req.Quantity
	item.MinStock = *req.MinStock
	item.Unit = req.Unit
	item.UnitCost = req.UnitCost

	if err := db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update inventory item",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    inventoryItemView{InventoryItem: item, StockStatus: item.StockStatus()},
	})
}
