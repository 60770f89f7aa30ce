// Package otp issues the one-time delivery codes a courier must collect
// from the customer before an order can be marked delivered.
package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	min  = 100000
	span = 900000
)

// Generate returns a 6-digit code uniform in [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+min, 10), nil
}
