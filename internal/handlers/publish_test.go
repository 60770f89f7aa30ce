package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izsecurity/shop/internal/models"
)

type failingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *failingPublisher) PublishEvent(context.Context, string, string, any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return errors.New("broker unreachable")
}

func (p *failingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// An event stream outage must never fail a request: publish errors are
// logged and swallowed while the mutation itself succeeds.
func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	env.seedCheckout()

	publisher := &failingPublisher{}
	env.Orders.Producer = publisher
	env.Cart.Producer = publisher

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

	var orders int64
	env.DB.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, 1, publisher.count())

	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: 7, Quantity: 1}).Error)
	rec, c = env.doJSONRequest(http.MethodPost, "/cart", map[string]any{"userId": 1, "productId": 7})
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, publisher.count())
}
