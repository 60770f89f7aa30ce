package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/izsecurity/shop/internal/events"
	"github.com/izsecurity/shop/internal/models"
	"github.com/izsecurity/shop/internal/notify"
)

// UserHandler persists the identity the external provider already
// authenticated. No credentials ever pass through here.
type UserHandler struct {
	DB         *gorm.DB
	Producer   EventPublisher
	Dispatcher interface{ Dispatch(ev notify.Event) }
}

func (h *UserHandler) SaveUser(c echo.Context) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email required")
	}

	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusOK, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	user := models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  "customer",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.Dispatcher != nil {
		h.Dispatcher.Dispatch(notify.Event{
			Kind:           notify.KindWelcome,
			CustomerName:   user.Name,
			RecipientEmail: user.Email,
		})
	}
	publish(c, h.Producer, events.TopicUsers, fmt.Sprint(user.ID), map[string]any{
		"type":   "user_created",
		"userID": user.ID,
		"email":  user.Email,
	})

	return c.JSON(http.StatusOK, user)
}
