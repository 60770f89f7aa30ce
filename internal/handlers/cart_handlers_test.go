package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izsecurity/shop/internal/models"
)

func TestAddToCart_InsertThenIncrement(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.DB.Create(&models.Product{ID: 7, Name: "Dome Camera", Price: 500}).Error)

	body := map[string]any{"userId": 1, "productId": 7}
	rec, c := env.doJSONRequest(http.MethodPost, "/cart", body)
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var item models.CartItem
	require.NoError(t, env.DB.Where("user_id = ? AND product_id = ?", 1, 7).First(&item).Error)
	assert.Equal(t, uint(1), item.Quantity)

	_, c = env.doJSONRequest(http.MethodPost, "/cart", body)
	require.NoError(t, env.Cart.AddToCart(c))

	require.NoError(t, env.DB.Where("user_id = ? AND product_id = ?", 1, 7).First(&item).Error)
	assert.Equal(t, uint(2), item.Quantity)

	var count int64
	env.DB.Model(&models.CartItem{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddToCart_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/cart", map[string]any{"userId": 1})
	err := env.Cart.AddToCart(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestGetCart_JoinsProducts(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	rec, c := env.doJSONRequest(http.MethodGet, "/cart/1", nil)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []CartRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Dome Camera", rows[0].Name)
	assert.Equal(t, float64(500), rows[0].Price)
	assert.Equal(t, uint(2), rows[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	var item models.CartItem
	require.NoError(t, env.DB.First(&item).Error)

	_, c := env.doJSONRequest(http.MethodPut, "/cart/"+strconv.FormatUint(uint64(item.ID), 10), map[string]any{"quantity": 5})
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(uint64(item.ID), 10))
	require.NoError(t, env.Cart.UpdateQuantity(c))

	require.NoError(t, env.DB.First(&item, item.ID).Error)
	assert.Equal(t, uint(5), item.Quantity)
}

func TestUpdateQuantity_RejectsZero(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	var item models.CartItem
	require.NoError(t, env.DB.First(&item).Error)

	_, c := env.doJSONRequest(http.MethodPut, "/cart/1", map[string]any{"quantity": 0})
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(uint64(item.ID), 10))
	err := env.Cart.UpdateQuantity(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestRemoveFromCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	var item models.CartItem
	require.NoError(t, env.DB.First(&item).Error)

	_, c := env.doJSONRequest(http.MethodDelete, "/cart/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(uint64(item.ID), 10))
	require.NoError(t, env.Cart.RemoveFromCart(c))

	var count int64
	env.DB.Model(&models.CartItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestRemoveFromCart_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodDelete, "/cart/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	err := env.Cart.RemoveFromCart(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}
