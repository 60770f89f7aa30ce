package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/izsecurity/shop/internal/events"
	"github.com/izsecurity/shop/internal/models"
)

type CartHandler struct {
	DB       *gorm.DB
	Producer EventPublisher
}

// CartRow is a cart item joined with its product for display.
type CartRow struct {
	ID        uint    `json:"id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  uint    `json:"quantity"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil || userID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var rows []CartRow
	err = h.DB.Model(&models.CartItem{}).
		Select("cart_items.id, products.id AS product_id, products.name, products.price, products.image, cart_items.quantity").
		Joins("JOIN products ON cart_items.product_id = products.id").
		Where("cart_items.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req struct {
		UserID    uint `json:"userId"`
		ProductID uint `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.UserID == 0 || req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId and productId are required")
	}

	var item models.CartItem
	tx := h.DB.Where("user_id = ? AND product_id = ?", req.UserID, req.ProductID).First(&item)
	if tx.Error == nil {
		item.Quantity += 1
		if err := h.DB.Save(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		publish(c, h.Producer, events.TopicCart, fmt.Sprint(req.UserID), map[string]any{
			"type":      "cart_item_incremented",
			"userID":    req.UserID,
			"productID": req.ProductID,
			"quantity":  item.Quantity,
		})
		return c.JSON(http.StatusOK, item)
	}
	if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, tx.Error.Error())
	}

	newItem := models.CartItem{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  1,
	}
	if err := h.DB.Create(&newItem).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	publish(c, h.Producer, events.TopicCart, fmt.Sprint(req.UserID), map[string]any{
		"type":      "cart_item_added",
		"userID":    req.UserID,
		"productID": req.ProductID,
	})
	return c.JSON(http.StatusOK, newItem)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	var item models.CartItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item.Quantity = req.Quantity
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, events.TopicCart, fmt.Sprint(item.UserID), map[string]any{
		"type":         "cart_quantity_updated",
		"userID":       item.UserID,
		"id":           item.ID,
		"new_quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var item models.CartItem
	if err := h.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, events.TopicCart, fmt.Sprint(item.UserID), map[string]any{
		"type":         "cart_item_deleted",
		"userID":       item.UserID,
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, map[string]any{"deleted_item": id})
}
