package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/izsecurity/shop/internal/handlers"
	authmw "github.com/izsecurity/shop/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	ProductHandler *handlers.ProductHandler
	CartHandler    *handlers.CartHandler
	UserHandler    *handlers.UserHandler
	OrderHandler   *handlers.OrderHandler
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.POST("/save-user", d.UserHandler.SaveUser)

	e.GET("/products", d.ProductHandler.GetProducts)
	e.GET("/products/:id", d.ProductHandler.GetProduct)

	e.POST("/cart", d.CartHandler.AddToCart)
	e.GET("/cart/:userId", d.CartHandler.GetCart)
	e.PUT("/cart/:id", d.CartHandler.UpdateQuantity)
	e.DELETE("/cart/:id", d.CartHandler.RemoveFromCart)

	e.POST("/place-order", d.OrderHandler.PlaceOrder)
	e.POST("/create-payment", d.OrderHandler.CreatePayment)
	e.POST("/verify-payment", d.OrderHandler.VerifyPayment)
	e.GET("/my-orders/:userId", d.OrderHandler.MyOrders)

	// Customer self-cancel shares this route; the service distinguishes it
	// by the absence of a reason and applies the time-window guard.
	e.PUT("/update-order-status/:id", d.OrderHandler.UpdateOrderStatus)

	admin := e.Group("", authmw.RequireAdmin(d.JWTSecret))
	admin.GET("/orders", d.OrderHandler.AllOrders)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PUT("/products/:id", d.ProductHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
}
