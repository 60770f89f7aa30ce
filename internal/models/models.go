package models

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string  `gorm:"not null"                  json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null"                  json:"price"`
	Image       string  `json:"image"`
	Stock       uint    `json:"stock"`
}

type User struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name  string `gorm:"not null"                  json:"name"`
	Email string `gorm:"uniqueIndex;not null"      json:"email"`
	Role  string `gorm:"not null;default:customer" json:"role"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                    json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product"    json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"                    json:"quantity"`
}

type Order struct {
	ID            uint        `gorm:"primaryKey"                       json:"id"`
	UserID        uint        `gorm:"index;not null"                   json:"user_id"`
	CustomerName  string      `gorm:"not null"                         json:"customer_name"`
	Phone         string      `gorm:"not null"                         json:"phone"`
	Address       string      `gorm:"not null"                         json:"address"`
	TotalAmount   float64     `gorm:"not null"                         json:"total_amount"`
	PaymentMethod string      `gorm:"not null"                         json:"payment_method"`
	PaymentStatus string      `gorm:"not null"                         json:"payment_status"`
	OrderStatus   string      `gorm:"not null"                         json:"order_status"`
	CancelReason  *string     `json:"cancel_reason,omitempty"`
	DeliveryOTP   *string     `gorm:"column:delivery_otp"              json:"delivery_otp,omitempty"`
	OTPVerified   bool        `gorm:"column:otp_verified;default:false" json:"otp_verified"`
	CreatedAt     int64       `gorm:"not null"                         json:"created_at"`
	Items         []OrderItem `gorm:"foreignKey:OrderID"               json:"items"`
}

// OrderItem is the line-item snapshot frozen at checkout. Name and unit
// price are copied from the product row so later catalog edits never
// change what the customer paid for.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey"                  json:"id"`
	OrderID     uint    `gorm:"index;not null"              json:"order_id"`
	ProductID   uint    `gorm:"not null"                    json:"product_id"`
	ProductName string  `gorm:"not null"                    json:"product_name"`
	UnitPrice   float64 `gorm:"not null"                    json:"unit_price"`
	Quantity    uint    `gorm:"default:1;check:quantity>0"  json:"quantity"`
}
