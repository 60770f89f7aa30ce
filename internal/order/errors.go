package order

import "errors"

var (
	ErrValidation          = errors.New("validation")                   // 400
	ErrEmptyCart           = errors.New("cart is empty")                // 400
	ErrPaymentVerification = errors.New("payment verification failed")  // 400
	ErrNotFound            = errors.New("order not found")              // 404
	ErrInvalidStatus       = errors.New("unknown order status")         // 400
	ErrIllegalTransition   = errors.New("illegal status transition")    // 400
	ErrInvalidOTP          = errors.New("invalid delivery code")        // 400
	ErrCancelWindowExpired = errors.New("cancellation window expired")  // 400
)
