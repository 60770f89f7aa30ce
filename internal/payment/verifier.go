package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed verification request")

// VerificationRequest carries the gateway's payment confirmation for one
// verification call. It is never persisted.
type VerificationRequest struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// Verifier checks that a payment confirmation was really signed by the
// gateway. This is the only place a forged "I paid" claim gets rejected.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify recomputes the HMAC-SHA256 signature over orderID|paymentID and
// compares it in constant time. A mismatch returns false, not an error;
// only missing fields are an error.
func (v *Verifier) Verify(req VerificationRequest) (bool, error) {
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		return false, fmt.Errorf("%w: order id, payment id and signature are required", ErrMalformed)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(req.GatewayOrderID + "|" + req.GatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(req.Signature)), nil
}
