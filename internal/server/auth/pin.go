package auth

import (
	"regexp"

	"github.com/dmitrijs2005/lentik/internal/common"
	"golang.org/x/crypto/bcrypt"
)

var pinRe = regexp.MustCompile(`^[0-9]{4}$`)

// ValidatePin reports common.ErrorValidation unless pin is exactly 4 digits.
func ValidatePin(pin string) error {
	if !pinRe.MatchString(pin) {
		return common.ErrorValidation
	}
	return nil
}

// PinHasher hashes and checks PINs with bcrypt.
type PinHasher struct {
	cost int
}

// NewPinHasher clamps cost into bcrypt's accepted range.
func NewPinHasher(cost int) *PinHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PinHasher{cost: cost}
}

func (h *PinHasher) Hash(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Check returns true only when pin matches hash.
func (h *PinHasher) Check(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
