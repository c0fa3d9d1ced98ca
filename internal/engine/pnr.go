package engine

import (
	"crypto/rand"
	"math/big"
)

// pnrDigits is the length of a passenger name record number.
const pnrDigits = 10

// newPNR generates a random 10-digit PNR.  crypto/rand keeps the
// numbers unguessable; uniqueness against live bookings is enforced by
// the caller.  The first digit is never zero so the printed form is
// always ten digits wide.
func newPNR() (string, error) {
	digits := make([]byte, pnrDigits)
	for i := range digits {
		max := int64(10)
		lo := int64(0)
		if i == 0 {
			max, lo = 9, 1
		}
		n, err := rand.Int(rand.Reader, big.NewInt(max))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + lo + n.Int64())
	}
	return string(digits), nil
}
