package utils

import (
	"crypto/rand"
	"math/big"
)

const otpDigits = 6

// NewOTP returns a 6-digit numeric one-time code.
func NewOTP() (string, error) {
	buf := make([]byte, otpDigits)
	ten := big.NewInt(10)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
