package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/izsecurity/shop/internal/models"
	"github.com/izsecurity/shop/internal/notify"
	"github.com/izsecurity/shop/internal/order"
	"github.com/izsecurity/shop/internal/payment"
)

const testGatewaySecret = "test_gateway_secret"

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(ev notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

func (d *recordingDispatcher) kinds() []notify.Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notify.Kind, 0, len(d.events))
	for _, ev := range d.events {
		out = append(out, ev.Kind)
	}
	return out
}

type testEnv struct {
	T          *testing.T
	E          *echo.Echo
	DB         *gorm.DB
	Orders     *OrderHandler
	Cart       *CartHandler
	Products   *ProductHandler
	Users      *UserHandler
	Dispatcher *recordingDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	dispatcher := &recordingDispatcher{}
	svc := order.NewService(db, payment.NewVerifier(testGatewaySecret), dispatcher)
	svc.GenerateOTP = func() (string, error) { return "482913", nil }

	return &testEnv{
		T:          t,
		E:          echo.New(),
		DB:         db,
		Orders:     &OrderHandler{Svc: svc},
		Cart:       &CartHandler{DB: db},
		Products:   &ProductHandler{DB: db},
		Users:      &UserHandler{DB: db, Dispatcher: dispatcher},
		Dispatcher: dispatcher,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) seedCheckout() {
	require.NoError(env.T, env.DB.Create(&models.User{ID: 1, Name: "Irfan", Email: "irfan@example.com"}).Error)
	require.NoError(env.T, env.DB.Create(&models.Product{ID: 7, Name: "Dome Camera", Price: 500}).Error)
	require.NoError(env.T, env.DB.Create(&models.CartItem{UserID: 1, ProductID: 7, Quantity: 2}).Error)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}
