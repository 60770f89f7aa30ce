package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/izsecurity/shop/internal/logging"
	"github.com/izsecurity/shop/internal/models"
	"github.com/izsecurity/shop/internal/notify"
	"github.com/izsecurity/shop/internal/otp"
	"github.com/izsecurity/shop/internal/payment"
)

const (
	PaymentMethodCOD    = "COD"
	PaymentMethodOnline = "ONLINE"

	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"

	cancelWindow = 24 * time.Hour
)

type Verifier interface {
	Verify(req payment.VerificationRequest) (bool, error)
}

type Dispatcher interface {
	Dispatch(ev notify.Event)
}

// Service owns the checkout and fulfillment use cases: converting a cart
// into an order and driving the order through its status transitions.
type Service struct {
	DB         *gorm.DB
	Repo       *GormRepo
	Verifier   Verifier
	Dispatcher Dispatcher

	Now         func() time.Time
	GenerateOTP func() (string, error)
}

func NewService(db *gorm.DB, verifier Verifier, dispatcher Dispatcher) *Service {
	return &Service{
		DB:          db,
		Repo:        &GormRepo{DB: db},
		Verifier:    verifier,
		Dispatcher:  dispatcher,
		Now:         time.Now,
		GenerateOTP: otp.Generate,
	}
}

type PlaceOrderRequest struct {
	UserID        uint
	Name          string
	Phone         string
	Address       string
	PaymentMethod string
	Proof         *payment.VerificationRequest
}

type PlaceOrderResult struct {
	Order         *models.Order
	DisplayNumber int64
}

// PlaceOrder converts the user's cart into an order. The cart read, price
// snapshot, order insert and cart delete run in one transaction, with the
// cart deleted last so a failure always leaves "order missing, cart intact"
// rather than the reverse. Prices are whatever the catalog holds at this
// instant; a concurrent admin price edit is an accepted race.
func (svc *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if req.Name == "" || req.Phone == "" || req.Address == "" {
		return nil, fmt.Errorf("%w: name, phone and address are required", ErrValidation)
	}
	if req.PaymentMethod != PaymentMethodCOD && req.PaymentMethod != PaymentMethodOnline {
		return nil, fmt.Errorf("%w: invalid payment method %q", ErrValidation, req.PaymentMethod)
	}

	if req.PaymentMethod == PaymentMethodOnline {
		if req.Proof == nil {
			return nil, fmt.Errorf("%w: missing payment proof", ErrValidation)
		}
		ok, err := svc.Verifier.Verify(*req.Proof)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if !ok {
			return nil, ErrPaymentVerification
		}
	}

	paymentStatus := PaymentStatusPending
	if req.PaymentMethod == PaymentMethodOnline {
		paymentStatus = PaymentStatusPaid
	}

	var order models.Order

	txErr := svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", req.UserID).Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		var total float64
		items := make([]models.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			var p models.Product
			if err := tx.First(&p, ci.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d not found", ErrValidation, ci.ProductID)
				}
				return err
			}
			total += float64(ci.Quantity) * p.Price
			items = append(items, models.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    ci.Quantity,
			})
		}

		order = models.Order{
			UserID:        req.UserID,
			CustomerName:  req.Name,
			Phone:         req.Phone,
			Address:       req.Address,
			TotalAmount:   total,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: paymentStatus,
			OrderStatus:   StatusPending.String(),
			CreatedAt:     svc.Now().Unix(),
			Items:         items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", req.UserID).Delete(&models.CartItem{}).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	// The display number is cosmetic, so a failed count degrades to 0
	// instead of failing the already-committed order. Still logged.
	var displayNumber int64
	if err := svc.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND id <= ?", req.UserID, order.ID).
		Count(&displayNumber).Error; err != nil {
		logging.FromContext(ctx).Error("display number count failed",
			"order_id", order.ID, "user_id", req.UserID, "error", err)
		displayNumber = 0
	}

	svc.Dispatcher.Dispatch(svc.buildEvent(ctx, &order, notify.KindPlaced, ""))

	return &PlaceOrderResult{Order: &order, DisplayNumber: displayNumber}, nil
}

type AdvanceRequest struct {
	OrderID    uint
	Target     Status
	Reason     *string
	EnteredOTP string
}

// Advance drives one status transition, persists it atomically and emits
// the matching notification event. A cancel without a reason is treated as
// customer-initiated and must land inside the self-service window; a cancel
// with a reason is an admin action with no time restriction.
func (svc *Service) Advance(ctx context.Context, req AdvanceRequest) (*models.Order, error) {
	if !req.Target.IsValid() || req.Target == StatusPending {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Target)
	}

	current, err := svc.Repo.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	from := Status(current.OrderStatus)

	if !CanTransition(from, req.Target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, req.Target)
	}

	extra := map[string]any{}
	var kind notify.Kind
	var code string

	switch req.Target {
	case StatusShipped:
		kind = notify.KindShipped

	case StatusOutForDelivery:
		code, err = svc.GenerateOTP()
		if err != nil {
			return nil, fmt.Errorf("generate delivery code: %w", err)
		}
		extra["delivery_otp"] = code
		extra["otp_verified"] = false
		kind = notify.KindOutForDelivery

	case StatusDelivered:
		if current.DeliveryOTP == nil || req.EnteredOTP == "" || req.EnteredOTP != *current.DeliveryOTP {
			return nil, ErrInvalidOTP
		}
		// Clear the stored code so it cannot confirm anything twice.
		extra["delivery_otp"] = nil
		extra["otp_verified"] = true
		kind = notify.KindDelivered

	case StatusCancelled:
		if req.Reason == nil && !svc.withinCancelWindow(current) {
			return nil, ErrCancelWindowExpired
		}
		extra["cancel_reason"] = req.Reason
		kind = notify.KindCancelled
	}

	if err := svc.Repo.Transition(ctx, req.OrderID, from, req.Target, extra); err != nil {
		return nil, err
	}

	updated, err := svc.Repo.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	ev := svc.buildEvent(ctx, updated, kind, code)
	if req.Target == StatusCancelled {
		ev.AdminInitiated = req.Reason != nil
		if req.Reason != nil {
			ev.Reason = *req.Reason
		}
	}
	svc.Dispatcher.Dispatch(ev)

	return updated, nil
}

// Customer self-cancel is allowed only while the order is still pending and
// no older than 24 hours.
func (svc *Service) withinCancelWindow(o *models.Order) bool {
	if Status(o.OrderStatus) != StatusPending {
		return false
	}
	return svc.Now().Sub(time.Unix(o.CreatedAt, 0)) <= cancelWindow
}

type UserOrder struct {
	models.Order
	DisplayNumber int `json:"display_number"`
}

// ListUserOrders returns the customer's orders newest-first with a derived
// per-customer sequence number. The number is a read-time projection, never
// stored.
func (svc *Service) ListUserOrders(ctx context.Context, userID uint) ([]UserOrder, error) {
	orders, err := svc.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]UserOrder, 0, len(orders))
	for i := len(orders) - 1; i >= 0; i-- {
		out = append(out, UserOrder{Order: orders[i], DisplayNumber: i + 1})
	}
	return out, nil
}

func (svc *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	return svc.Repo.ListAll(ctx)
}

func (svc *Service) buildEvent(ctx context.Context, o *models.Order, kind notify.Kind, code string) notify.Event {
	lines := make([]notify.Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, notify.Line{Name: it.ProductName, Quantity: it.Quantity})
	}

	ev := notify.Event{
		OrderID:       o.ID,
		Kind:          kind,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Total:         o.TotalAmount,
		Items:         lines,
		OTP:           code,
	}

	var user models.User
	if err := svc.DB.WithContext(ctx).First(&user, o.UserID).Error; err == nil {
		ev.RecipientEmail = user.Email
	}
	return ev
}
