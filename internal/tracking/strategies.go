package tracking

import (
	"crypto/rand"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

const (
	alnumAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digitAlphabet = "0123456789"
)

// Strategy produces tracking numbers for one delivery method. The default
// strategy reports no method and serves every method without its own entry.
type Strategy interface {
	Method() (enums.DeliveryMethod, bool)
	Generate() (string, error)
}

// StandardStrategy issues UPS-style numbers for standard ground delivery.
type StandardStrategy struct{}

// Method implements Strategy.
func (StandardStrategy) Method() (enums.DeliveryMethod, bool) {
	return enums.DeliveryMethodStandard, true
}

// Generate returns a "1Z" prefixed number with 16 alphanumeric characters.
func (StandardStrategy) Generate() (string, error) {
	suffix, err := randomString(alnumAlphabet, 16)
	if err != nil {
		return "", err
	}
	return "1Z" + suffix, nil
}

// ExpressStrategy issues 12-digit numbers for express courier delivery.
type ExpressStrategy struct{}

// Method implements Strategy.
func (ExpressStrategy) Method() (enums.DeliveryMethod, bool) {
	return enums.DeliveryMethodExpress, true
}

// Generate returns a 12-digit number.
func (ExpressStrategy) Generate() (string, error) {
	return randomString(digitAlphabet, 12)
}

// DefaultStrategy issues an in-house reference for methods without a carrier
// format, such as store pickup.
type DefaultStrategy struct{}

// Method implements Strategy. The default declares no method.
func (DefaultStrategy) Method() (enums.DeliveryMethod, bool) {
	return "", false
}

// Generate returns an "SF" prefixed reference with 14 alphanumeric characters.
func (DefaultStrategy) Generate() (string, error) {
	suffix, err := randomString(alnumAlphabet, 14)
	if err != nil {
		return "", err
	}
	return "SF" + suffix, nil
}

func randomString(alphabet string, length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating tracking number: %w", err)
	}
	out := make([]byte, length)
	for i, b := range bytes {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
