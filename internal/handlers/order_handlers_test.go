package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izsecurity/shop/internal/models"
	"github.com/izsecurity/shop/internal/notify"
	"github.com/izsecurity/shop/internal/order"
)

func TestPlaceOrder_COD(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	body := map[string]any{
		"userId":        1,
		"name":          "Irfan",
		"phone":         "9876543210",
		"address":       "12 MG Road",
		"paymentMethod": "COD",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/place-order", body)
	require.NoError(t, env.Orders.PlaceOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID     uint  `json:"order_id"`
		OrderNumber int64 `json:"order_number"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.OrderNumber)

	var o models.Order
	require.NoError(t, env.DB.Preload("Items").First(&o, resp.OrderID).Error)
	assert.Equal(t, float64(1000), o.TotalAmount)
	assert.Equal(t, "Pending", o.PaymentStatus)
	assert.Equal(t, "Pending", o.OrderStatus)

	var cartCount int64
	env.DB.Model(&models.CartItem{}).Count(&cartCount)
	assert.Zero(t, cartCount)
}

func TestPlaceOrder_RejectsOnlineMethod(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	body := map[string]any{
		"userId":        1,
		"name":          "Irfan",
		"phone":         "9876543210",
		"address":       "12 MG Road",
		"paymentMethod": "ONLINE",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/place-order", body)
	err := env.Orders.PlaceOrder(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.DB.Create(&models.User{ID: 1, Name: "Irfan", Email: "irfan@example.com"}).Error)

	body := map[string]any{
		"userId":        1,
		"name":          "Irfan",
		"phone":         "9876543210",
		"address":       "12 MG Road",
		"paymentMethod": "COD",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/place-order", body)
	err := env.Orders.PlaceOrder(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func gatewaySignature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPayment_ValidSignaturePlacesPaidOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	body := map[string]any{
		"razorpay_order_id":   "order_ABC",
		"razorpay_payment_id": "pay_XYZ",
		"razorpay_signature":  gatewaySignature("order_ABC", "pay_XYZ"),
		"userId":              1,
		"name":                "Irfan",
		"phone":               "9876543210",
		"address":             "12 MG Road",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/verify-payment", body)
	require.NoError(t, env.Orders.VerifyPayment(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var o models.Order
	require.NoError(t, env.DB.Order("id DESC").First(&o).Error)
	assert.Equal(t, "ONLINE", o.PaymentMethod)
	assert.Equal(t, "Paid", o.PaymentStatus)
}

func TestVerifyPayment_ForgedSignatureRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	body := map[string]any{
		"razorpay_order_id":   "order_ABC",
		"razorpay_payment_id": "pay_XYZ",
		"razorpay_signature":  "0000000000000000000000000000000000000000000000000000000000000000",
		"userId":              1,
		"name":                "Irfan",
		"phone":               "9876543210",
		"address":             "12 MG Road",
	}
	_, c := env.doJSONRequest(http.MethodPost, "/verify-payment", body)
	err := env.Orders.VerifyPayment(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	var orders int64
	env.DB.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)

	var cartCount int64
	env.DB.Model(&models.CartItem{}).Count(&cartCount)
	assert.Equal(t, int64(1), cartCount)
}

func (env *testEnv) placeOrder() uint {
	env.T.Helper()
	env.seedCheckout()
	body := map[string]any{
		"userId":        1,
		"name":          "Irfan",
		"phone":         "9876543210",
		"address":       "12 MG Road",
		"paymentMethod": "COD",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/place-order", body)
	require.NoError(env.T, env.Orders.PlaceOrder(c))

	var resp struct {
		OrderID uint `json:"order_id"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.OrderID
}

func (env *testEnv) updateStatus(orderID uint, body map[string]any) (int, error) {
	env.T.Helper()
	rec, c := env.doJSONRequest(http.MethodPut, "/update-order-status/"+strconv.FormatUint(uint64(orderID), 10), body)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(uint64(orderID), 10))
	err := env.Orders.UpdateOrderStatus(c)
	if err != nil {
		return httpStatus(env.T, err), err
	}
	return rec.Code, nil
}

func TestUpdateOrderStatus_OTPFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.placeOrder()

	code, err := env.updateStatus(id, map[string]any{"status": "Shipped"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	code, err = env.updateStatus(id, map[string]any{"status": "Out for Delivery"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	code, err = env.updateStatus(id, map[string]any{"status": "Delivered", "enteredOtp": "000000"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, code)

	code, err = env.updateStatus(id, map[string]any{"status": "Delivered", "enteredOtp": "482913"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	var o models.Order
	require.NoError(t, env.DB.First(&o, id).Error)
	assert.Equal(t, "Delivered", o.OrderStatus)
	assert.True(t, o.OTPVerified)
}

func TestUpdateOrderStatus_AdminCancel(t *testing.T) {
	env := newTestEnv(t)
	id := env.placeOrder()

	code, err := env.updateStatus(id, map[string]any{"status": "Cancelled", "reason": "Out of stock"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	var o models.Order
	require.NoError(t, env.DB.First(&o, id).Error)
	require.NotNil(t, o.CancelReason)
	assert.Equal(t, "Out of stock", *o.CancelReason)

	kinds := env.Dispatcher.kinds()
	assert.Contains(t, kinds, notify.KindCancelled)

	// Second cancel on a terminal order is rejected.
	code, err = env.updateStatus(id, map[string]any{"status": "Cancelled", "reason": "duplicate"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMyOrders(t *testing.T) {
	env := newTestEnv(t)
	env.placeOrder()

	rec, c := env.doJSONRequest(http.MethodGet, "/my-orders/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, env.Orders.MyOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []order.UserOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 1, resp[0].DisplayNumber)
	require.Len(t, resp[0].Items, 1)
	assert.Equal(t, "Dome Camera", resp[0].Items[0].ProductName)
}
