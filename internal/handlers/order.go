package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/izsecurity/shop/internal/events"
	"github.com/izsecurity/shop/internal/logging"
	"github.com/izsecurity/shop/internal/order"
	"github.com/izsecurity/shop/internal/payment"
)

// PaymentGateway creates orders with the payment provider before checkout.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64) (*payment.GatewayOrder, error)
}

type OrderHandler struct {
	Svc      *order.Service
	Gateway  PaymentGateway
	Producer EventPublisher
}

type placeOrderRequest struct {
	UserID        uint   `json:"userId"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
}

// PlaceOrder handles the cash-on-delivery path. Online payments must come
// through VerifyPayment so the signature check runs first.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place_order")

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.PaymentMethod != order.PaymentMethodCOD {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	result, err := h.Svc.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserID:        req.UserID,
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: order.PaymentMethodCOD,
	})
	if err != nil {
		return h.orderError(l, "place_order_error", err)
	}

	l.Info("place_order_success", "order_id", result.Order.ID)
	h.publishOrderEvent(c, result.Order.ID, result.Order.UserID, "order_created")

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Order placed successfully!",
		"order_id":     result.Order.ID,
		"order_number": result.DisplayNumber,
	})
}

func (h *OrderHandler) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_payment")

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}

	gwOrder, err := h.Gateway.CreateOrder(ctx, req.Amount)
	if err != nil {
		l.Error("create_payment_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "payment creation failed")
	}

	return c.JSON(http.StatusOK, gwOrder)
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	UserID            uint   `json:"userId"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
}

// VerifyPayment checks the gateway signature and, only if genuine, places
// the order as paid online.
func (h *OrderHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.verify_payment")

	var req verifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	result, err := h.Svc.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserID:        req.UserID,
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: order.PaymentMethodOnline,
		Proof: &payment.VerificationRequest{
			GatewayOrderID:   req.RazorpayOrderID,
			GatewayPaymentID: req.RazorpayPaymentID,
			Signature:        req.RazorpaySignature,
		},
	})
	if err != nil {
		return h.orderError(l, "verify_payment_error", err)
	}

	l.Info("verify_payment_success", "order_id", result.Order.ID)
	h.publishOrderEvent(c, result.Order.ID, result.Order.UserID, "order_created")

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Order placed successfully!",
		"order_id":     result.Order.ID,
		"order_number": result.DisplayNumber,
	})
}

type updateStatusRequest struct {
	Status     string  `json:"status"`
	Reason     *string `json:"reason,omitempty"`
	EnteredOTP string  `json:"enteredOtp,omitempty"`
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updated, err := h.Svc.Advance(ctx, order.AdvanceRequest{
		OrderID:    uint(id),
		Target:     order.Status(req.Status),
		Reason:     req.Reason,
		EnteredOTP: req.EnteredOTP,
	})
	if err != nil {
		return h.orderError(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", updated.ID, "status", updated.OrderStatus)
	h.publishOrderEvent(c, updated.ID, updated.UserID, "order_status_updated")

	return c.JSON(http.StatusOK, updated)
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil || userID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	orders, err := h.Svc.ListUserOrders(c.Request().Context(), uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "error fetching orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) AllOrders(c echo.Context) error {
	orders, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "error fetching orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) orderError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, order.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrPaymentVerification),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrInvalidOTP),
		errors.Is(err, order.ErrCancelWindowExpired):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHandler) publishOrderEvent(c echo.Context, orderID, userID uint, kind string) {
	publish(c, h.Producer, events.TopicOrders, fmt.Sprint(userID), map[string]any{
		"type":    kind,
		"orderID": orderID,
		"userID":  userID,
	})
}
